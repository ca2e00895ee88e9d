package handlers

import (
	"net/http"

	"http-codes-api/models"
	"http-codes-api/types"
)

func (s *E2ETestSuite) codeID(code string) string {
	codes := s.searchCodes(code)
	s.Require().Len(codes, 1, "expected exactly one catalog record for %s", code)
	return codes[0].ID
}

func (s *E2ETestSuite) Test20_CreateFilter() {
	resp := s.doJSON("POST", "/filters", s.ownerToken, map[string]interface{}{
		"name":  "My 4xx",
		"query": "4xx",
		"codes": []string{s.codeID("404"), s.codeID("400")},
	})
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)
	var body types.ResultResponse
	decodeBody(s, resp, &body)
	s.True(body.Result)
	s.Equal("Filter Saved Successfully", body.Message)
}

func (s *E2ETestSuite) Test21_CreateMissingMandatory() {
	for _, req := range []map[string]interface{}{
		{"name": "", "query": "4xx"},
		{"name": "My 4xx", "query": "   "},
		{"query": "4xx"},
	} {
		resp := s.doJSON("POST", "/filters", s.ownerToken, req)
		var body types.ResultResponse
		decodeBody(s, resp, &body)
		resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.False(body.Result)
		s.Equal("Name and Query is mandatory", body.Message)
	}
}

func (s *E2ETestSuite) Test22_CreateDuplicateNameSameOwner() {
	resp := s.doJSON("POST", "/filters", s.ownerToken, map[string]interface{}{
		"name":  "My 4xx",
		"query": "40x",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var body types.ResultResponse
	decodeBody(s, resp, &body)
	s.False(body.Result)
	s.Equal("Filters with Name already exists", body.Message)
}

// The same name under a different owner is fine; uniqueness is scoped.
func (s *E2ETestSuite) Test23_SameNameDifferentOwner() {
	resp := s.doJSON("POST", "/filters", s.otherToken, map[string]interface{}{
		"name":  "My 4xx",
		"query": "4xx",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)
}

func (s *E2ETestSuite) Test24_CreateInvalidCodes() {
	resp := s.doJSON("POST", "/filters", s.ownerToken, map[string]interface{}{
		"name":  "Broken",
		"query": "5xx",
		"codes": []string{s.codeID("500"), "hc-bogus"},
	})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var body types.ResultResponse
	decodeBody(s, resp, &body)
	s.False(body.Result)
	s.Equal("Invalid Codes are present", body.Message)

	// nothing was persisted on the rejection path
	list := s.doJSON("GET", "/filters", s.ownerToken, nil)
	defer list.Body.Close()
	var filters []models.SavedFilter
	decodeBody(s, list, &filters)
	for _, f := range filters {
		s.NotEqual("Broken", f.Name)
	}
}

func (s *E2ETestSuite) Test25_ListOwnerScoped() {
	resp := s.doJSON("GET", "/filters", s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	var filters []models.SavedFilter
	decodeBody(s, resp, &filters)
	s.Require().Len(filters, 1)
	s.Equal("My 4xx", filters[0].Name)
	s.Equal("4xx", filters[0].Query)
	// codes in supplied order: 404 before 400
	s.Require().Len(filters[0].HTTPCodes, 2)
	s.Equal(404, filters[0].HTTPCodes[0].Code)
	s.Equal(400, filters[0].HTTPCodes[1].Code)

	s.createdFilterID = filters[0].ID
}

func (s *E2ETestSuite) Test26_GetByIDOwnerOnly() {
	resp := s.doJSON("GET", "/filters/"+s.createdFilterID, s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// foreign identity sees 404, never 403
	foreign := s.doJSON("GET", "/filters/"+s.createdFilterID, s.otherToken, nil)
	defer foreign.Body.Close()
	s.Equal(http.StatusNotFound, foreign.StatusCode)
}

func (s *E2ETestSuite) Test27_UpdateFilter() {
	resp := s.doJSON("PUT", "/filters/"+s.createdFilterID, s.ownerToken, map[string]interface{}{
		"name":  "Client errs",
		"codes": []string{s.codeID("451")},
	})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	var body types.FilterUpdateResponse
	decodeBody(s, resp, &body)
	s.True(body.Result)
	s.Empty(body.ErrorMessage)
	s.Require().NotNil(body.Filter)
	s.Equal("Client errs", body.Filter.Name)
	s.Equal("4xx", body.Filter.Query, "query is not touched by update")
	s.Require().Len(body.Filter.HTTPCodes, 1)
	s.Equal(451, body.Filter.HTTPCodes[0].Code)
}

func (s *E2ETestSuite) Test28_UpdateForeignFilterInvalidID() {
	resp := s.doJSON("PUT", "/filters/"+s.createdFilterID, s.otherToken, map[string]interface{}{
		"name": "Hijack",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var body types.FilterUpdateResponse
	decodeBody(s, resp, &body)
	s.False(body.Result)
	s.Equal("Invalid Filter Id", body.ErrorMessage)
}

func (s *E2ETestSuite) Test29_UpdateInvalidCodes() {
	resp := s.doJSON("PUT", "/filters/"+s.createdFilterID, s.ownerToken, map[string]interface{}{
		"name":  "Client errs",
		"codes": []string{"hc-bogus"},
	})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var body types.FilterUpdateResponse
	decodeBody(s, resp, &body)
	s.Equal("Invalid Codes are present", body.ErrorMessage)
}

func (s *E2ETestSuite) Test30_UpdateDuplicateName() {
	create := s.doJSON("POST", "/filters", s.ownerToken, map[string]interface{}{
		"name":  "Second",
		"query": "30x",
	})
	create.Body.Close()
	s.Equal(http.StatusCreated, create.StatusCode)

	resp := s.doJSON("PUT", "/filters/"+s.createdFilterID, s.ownerToken, map[string]interface{}{
		"name": "Second",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var body types.FilterUpdateResponse
	decodeBody(s, resp, &body)
	s.Equal("Filters with Name already exists", body.ErrorMessage)
}

func (s *E2ETestSuite) Test31_DeleteTwice() {
	resp := s.doJSON("DELETE", "/filters/"+s.createdFilterID, s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	var body types.ResultResponse
	decodeBody(s, resp, &body)
	s.True(body.Result)
	s.Equal("Deleted Successfully", body.Message)

	again := s.doJSON("DELETE", "/filters/"+s.createdFilterID, s.ownerToken, nil)
	defer again.Body.Close()
	s.Equal(http.StatusNotFound, again.StatusCode)
	var body2 types.ResultResponse
	decodeBody(s, again, &body2)
	s.False(body2.Result)
	s.Equal("Not Found", body2.Message)
}

func (s *E2ETestSuite) Test32_DeleteForeignFilterNotFound() {
	create := s.doJSON("POST", "/filters", s.otherToken, map[string]interface{}{
		"name":  "Keep me",
		"query": "2xx",
	})
	create.Body.Close()
	s.Equal(http.StatusCreated, create.StatusCode)

	list := s.doJSON("GET", "/filters", s.otherToken, nil)
	var filters []models.SavedFilter
	decodeBody(s, list, &filters)
	list.Body.Close()
	var keepID string
	for _, f := range filters {
		if f.Name == "Keep me" {
			keepID = f.ID
		}
	}
	s.Require().NotEmpty(keepID)

	resp := s.doJSON("DELETE", "/filters/"+keepID, s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	// still present for its owner
	still := s.doJSON("GET", "/filters/"+keepID, s.otherToken, nil)
	defer still.Body.Close()
	s.Equal(http.StatusOK, still.StatusCode)
}
