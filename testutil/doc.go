// Package testutil provides an in-process fake HTTP API for tests.
//
// A FakeAPI is a gin engine served by httptest. Routes answer with canned
// replies, and every request is recorded so tests can assert on what a
// client actually sent:
//
//	func TestListUsers(t *testing.T) {
//	    api := testutil.NewFakeAPI(t)
//	    api.JSON(http.MethodGet, "/users", http.StatusOK, []any{"ann", "bob"})
//
//	    // ... point a client at api.URL() ...
//
//	    if n := api.Count(http.MethodGet, "/users"); n != 1 {
//	        t.Errorf("expected 1 request, got %d", n)
//	    }
//	}
//
// Sequence answers successive requests differently, which is how token
// expiry followed by success is simulated. The server is closed when the
// test ends.
package testutil
