package actor

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/infra/auth"
)

type keys struct {
	signer    *auth.Signer
	validator *auth.BaseValidator
}

func newKeys(t *testing.T) keys {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return keys{signer: auth.NewSigner(key, time.Hour), validator: auth.NewBaseValidator(&key.PublicKey)}
}

func (k keys) token(t *testing.T, u domain.User) string {
	t.Helper()
	tok, err := k.signer.Issue(u)
	require.NoError(t, err)
	return tok.AccessToken
}

func TestResolve(t *testing.T) {
	k := newKeys(t)
	core, logs := observer.New(zap.WarnLevel)
	r := NewResolver(k.validator, "", zap.New(core))

	adminTok := k.token(t, domain.User{ID: 2, Username: "olga", Role: domain.RoleAdmin})
	userTok := k.token(t, domain.User{ID: 3, Username: "ivan", Role: domain.RoleUser})

	tests := []struct {
		name   string
		cookie string
		header string
		want   domain.ActorContext
	}{
		{name: "no credentials", want: domain.Anonymous()},
		{name: "cookie", cookie: adminTok, want: domain.ActorContext{ID: 2, DisplayName: "olga", Role: domain.RoleAdmin}},
		{name: "bearer header", header: "Bearer " + userTok, want: domain.ActorContext{ID: 3, DisplayName: "ivan", Role: domain.RoleUser}},
		{name: "cookie wins over header", cookie: userTok, header: "Bearer " + adminTok, want: domain.ActorContext{ID: 3, DisplayName: "ivan", Role: domain.RoleUser}},
		{name: "tampered token", cookie: adminTok + "x", want: domain.Anonymous()},
		{name: "garbage header", header: "Bearer abc.def.ghi", want: domain.Anonymous()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, r.Resolve(req))
		})
	}

	assert.Equal(t, 2, logs.FilterMessage("auth failure").Len())
}

func TestFromContextDefaultsToAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, FromContext(req.Context()).IsAnonymous())

	a := domain.ActorContext{ID: 9, Role: domain.RoleEditor}
	assert.Equal(t, a, FromContext(WithActor(req.Context(), a)))
}

func TestRequireMiddlewares(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	anon := domain.Anonymous()
	user := domain.ActorContext{ID: 3, Role: domain.RoleUser}
	editor := domain.ActorContext{ID: 4, Role: domain.RoleEditor}
	super := domain.ActorContext{ID: 1, Role: domain.RoleSuperAdmin}

	tests := []struct {
		name  string
		h     http.Handler
		actor domain.ActorContext
		code  int
	}{
		{name: "authenticated anon", h: RequireAuthenticated(ok), actor: anon, code: http.StatusUnauthorized},
		{name: "authenticated user", h: RequireAuthenticated(ok), actor: user, code: http.StatusNoContent},
		{name: "privileged user", h: RequirePrivileged(ok), actor: user, code: http.StatusForbidden},
		{name: "privileged editor", h: RequirePrivileged(ok), actor: editor, code: http.StatusNoContent},
		{name: "top editor", h: RequireTopPrivileged(ok), actor: editor, code: http.StatusForbidden},
		{name: "top super", h: RequireTopPrivileged(ok), actor: super, code: http.StatusNoContent},
		{name: "section editor orders", h: RequireSection(SectionOrders)(ok), actor: editor, code: http.StatusForbidden},
		{name: "section editor products", h: RequireSection(SectionProducts)(ok), actor: editor, code: http.StatusNoContent},
		{name: "section anon", h: RequireSection(SectionProducts)(ok), actor: anon, code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithActor(req.Context(), tt.actor))
			rec := httptest.NewRecorder()
			tt.h.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestMiddlewareStoresActor(t *testing.T) {
	k := newKeys(t)
	r := NewResolver(k.validator, "sid", zap.NewNop())

	var got domain.ActorContext
	h := Middleware(r)(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got = FromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: k.token(t, domain.User{ID: 8, Username: "a", Role: domain.RoleEditor})})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, int64(8), got.ID)
	assert.Equal(t, domain.RoleEditor, got.Role)
}

func TestCanAccess(t *testing.T) {
	custom := domain.ActorContext{ID: 5, Role: domain.RoleCustom, Privileges: []string{"/admin/manage-orders", "contacts"}}

	assert.True(t, CanAccess(domain.ActorContext{ID: 1, Role: domain.RoleSuperAdmin}, SectionAccounts))
	assert.False(t, CanAccess(domain.ActorContext{ID: 2, Role: domain.RoleAdmin}, SectionAccounts))
	assert.True(t, CanAccess(domain.ActorContext{ID: 2, Role: domain.RoleAdmin}, SectionOrders))
	assert.False(t, CanAccess(domain.ActorContext{ID: 3, Role: domain.RoleUser}, SectionProducts))
	assert.False(t, CanAccess(domain.Anonymous(), SectionProducts))
	assert.True(t, CanAccess(custom, SectionOrders))
	assert.True(t, CanAccess(custom, SectionContacts))
	assert.False(t, CanAccess(custom, SectionProducts))

	assert.Equal(t, []Section{SectionOrders, SectionContacts}, Sections(custom))
	assert.Equal(t, []Section{SectionProducts, SectionCategories}, Sections(domain.ActorContext{ID: 4, Role: domain.RoleEditor}))
	assert.Nil(t, Sections(domain.Anonymous()))
	assert.Equal(t, "/admin/manage-orders", SectionOrders.Path())
}
