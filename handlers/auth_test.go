package handlers

import "net/http"

func (s *E2ETestSuite) Test01_RegisterUsers() {
	resp := s.doJSON("POST", "/register", "", map[string]string{
		"username": "filterowner", "password": "ownerpass123",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp2 := s.doJSON("POST", "/register", "", map[string]string{
		"username": "otheruser", "password": "otherpass123",
	})
	defer resp2.Body.Close()
	s.Equal(http.StatusCreated, resp2.StatusCode)
}

func (s *E2ETestSuite) Test02_RegisterShortPassword() {
	resp := s.doJSON("POST", "/register", "", map[string]string{
		"username": "weakuser", "password": "short",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *E2ETestSuite) Test03_LoginInvalid() {
	resp := s.doJSON("POST", "/login", "", map[string]string{
		"username": "filterowner", "password": "wrong",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *E2ETestSuite) Test04_LoginValid() {
	resp := s.doJSON("POST", "/login", "", map[string]string{
		"username": "filterowner", "password": "ownerpass123",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	var data map[string]string
	decodeBody(s, resp, &data)
	s.NotEmpty(data["token"])
	s.ownerToken = data["token"]

	resp2 := s.doJSON("POST", "/login", "", map[string]string{
		"username": "otheruser", "password": "otherpass123",
	})
	defer resp2.Body.Close()
	s.Equal(http.StatusOK, resp2.StatusCode)
	var data2 map[string]string
	decodeBody(s, resp2, &data2)
	s.NotEmpty(data2["token"])
	s.otherToken = data2["token"]
}

func (s *E2ETestSuite) Test05_FiltersRequireAuth() {
	resp := s.doJSON("GET", "/filters", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
