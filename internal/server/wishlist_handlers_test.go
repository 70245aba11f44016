package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukhira/storefront/internal/auth"
	"github.com/sukhira/storefront/internal/config"
	"github.com/sukhira/storefront/internal/crypto"
	"github.com/sukhira/storefront/internal/customeraccount"
	"github.com/sukhira/storefront/internal/session"
	"github.com/sukhira/storefront/internal/wishlist"
)

// identityUpstream stands in for the Customer Account API, dispatching on
// the GraphQL operation in the request body
type identityUpstream struct {
	server         *httptest.Server
	metafieldValue string
	setValue       string
	setCalls       int
}

func newIdentityUpstream(t *testing.T) *identityUpstream {
	t.Helper()
	up := &identityUpstream{}
	up.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(payload.Query, "customerMetafieldsSet"):
			up.setCalls++
			metafields := payload.Variables["metafields"].([]any)
			up.setValue = metafields[0].(map[string]any)["value"].(string)
			fmt.Fprint(w, `{"data":{"customerMetafieldsSet":{"metafields":[],"userErrors":[]}}}`)
		case strings.Contains(payload.Query, "metafield("):
			if up.metafieldValue == "" {
				fmt.Fprint(w, `{"data":{"customer":{"metafield":null}}}`)
				return
			}
			resp, err := json.Marshal(map[string]any{
				"data": map[string]any{
					"customer": map[string]any{
						"metafield": map[string]string{"value": up.metafieldValue},
					},
				},
			})
			require.NoError(t, err)
			w.Write(resp)
		case strings.Contains(payload.Query, "orders("):
			fmt.Fprint(w, `{"data":{"customer":{"orders":{"edges":[]}}}}`)
		default:
			fmt.Fprint(w, `{"data":{"customer":{"id":"gid://shopify/Customer/1","firstName":"Ada"}}}`)
		}
	}))
	t.Cleanup(up.server.Close)
	return up
}

type wishlistEnv struct {
	wishlist *WishlistHandlers
	orders   *OrdersHandlers
	store    session.Store
}

func newWishlistEnv(t *testing.T, up *identityUpstream, maxItems int) *wishlistEnv {
	t.Helper()
	accounts := customeraccount.NewClient(config.CustomerAccountConfig{
		ClientID:    "shp_client",
		AuthDomain:  up.server.URL,
		RedirectURI: "https://shop.example.com/auth/callback",
	})

	enc, err := crypto.NewEncryptor([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	store := session.NewCookieStore(enc)
	resolver := auth.NewResolver(accounts, store)

	return &wishlistEnv{
		wishlist: NewWishlistHandlers(resolver, wishlist.NewService(accounts, maxItems)),
		orders:   NewOrdersHandlers(resolver, accounts),
		store:    store,
	}
}

func (env *wishlistEnv) authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, env.store.Save(rec, &session.Session{
		AccessToken: "tok_valid",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func wishlistBody(t *testing.T, items []wishlist.Item) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"items": items})
	require.NoError(t, err)
	return string(data)
}

func TestWishlistGetRequiresSession(t *testing.T) {
	up := newIdentityUpstream(t)
	env := newWishlistEnv(t, up, 100)

	rec := httptest.NewRecorder()
	env.wishlist.GetHandler(rec, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestWishlistGetReturnsRemoteList(t *testing.T) {
	up := newIdentityUpstream(t)
	up.metafieldValue = `[{"productId":"p1","title":"Blue Shirt"}]`
	env := newWishlistEnv(t, up, 100)

	rec := httptest.NewRecorder()
	env.wishlist.GetHandler(rec, env.authedRequest(t, http.MethodGet, "/api/wishlist", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []wishlist.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "p1", body.Items[0].ProductID)
}

func TestWishlistSyncOversizedListRejected(t *testing.T) {
	up := newIdentityUpstream(t)
	env := newWishlistEnv(t, up, 2)

	local := []wishlist.Item{{ProductID: "p1"}, {ProductID: "p2"}, {ProductID: "p3"}}
	rec := httptest.NewRecorder()
	env.wishlist.SyncHandler(rec, env.authedRequest(t, http.MethodPost, "/api/wishlist/sync", wishlistBody(t, local)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
	assert.Equal(t, 0, up.setCalls)
}

func TestWishlistSyncMergesLocalIntoRemote(t *testing.T) {
	up := newIdentityUpstream(t)
	up.metafieldValue = `[{"productId":"r1","title":"Remote"}]`
	env := newWishlistEnv(t, up, 100)

	local := []wishlist.Item{{ProductID: "l1", Title: "Local"}, {ProductID: "r1", Title: "Stale local copy"}}
	rec := httptest.NewRecorder()
	env.wishlist.SyncHandler(rec, env.authedRequest(t, http.MethodPost, "/api/wishlist/sync", wishlistBody(t, local)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items  []wishlist.Item `json:"items"`
		Synced bool            `json:"synced"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Synced)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "r1", body.Items[0].ProductID)
	assert.Equal(t, "Remote", body.Items[0].Title)
	assert.Equal(t, "l1", body.Items[1].ProductID)

	// The merged list is written back to the metafield once
	assert.Equal(t, 1, up.setCalls)
	assert.Contains(t, up.setValue, `"r1"`)
	assert.Contains(t, up.setValue, `"l1"`)
}

func TestWishlistPutRejectsMalformedBody(t *testing.T) {
	up := newIdentityUpstream(t)
	env := newWishlistEnv(t, up, 100)

	rec := httptest.NewRecorder()
	env.wishlist.PutHandler(rec, env.authedRequest(t, http.MethodPut, "/api/wishlist", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, up.setCalls)
}

func TestOrdersRequireSession(t *testing.T) {
	up := newIdentityUpstream(t)
	env := newWishlistEnv(t, up, 100)

	rec := httptest.NewRecorder()
	env.orders.GetHandler(rec, httptest.NewRequest(http.MethodGet, "/api/account/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestOrdersEmptyHistory(t *testing.T) {
	up := newIdentityUpstream(t)
	env := newWishlistEnv(t, up, 100)

	rec := httptest.NewRecorder()
	env.orders.GetHandler(rec, env.authedRequest(t, http.MethodGet, "/api/account/orders", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Orders []customeraccount.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Orders)
	assert.Empty(t, body.Orders)
}
