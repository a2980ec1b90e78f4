package baldr_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movermeyer/baldr"
)

func TestNewResourceAPI_derives_name_from_resource(t *testing.T) {
	t.Parallel()

	api, err := baldr.NewResourceAPI(listOnlyAPI{}, item{})
	require.NoError(t, err)
	assert.Equal(t, "items", api.Name())

	api, err = baldr.NewResourceAPI(listOnlyAPI{}, &item{})
	require.NoError(t, err)
	assert.Equal(t, "items", api.Name(), "pointer prototypes should derive the same name")
}

func TestNewResourceAPI_with_name(t *testing.T) {
	t.Parallel()

	api, err := baldr.NewResourceAPI(listOnlyAPI{}, item{}, baldr.WithName("inventory"))
	require.NoError(t, err)
	assert.Equal(t, "inventory", api.Name())
}

func TestNewResourceAPI_rejects_nil_resource(t *testing.T) {
	t.Parallel()

	_, err := baldr.NewResourceAPI(listOnlyAPI{}, nil)
	assert.Error(t, err)
}

func TestNewResourceAPI_rejects_unnamed_resource_without_name(t *testing.T) {
	t.Parallel()

	_, err := baldr.NewResourceAPI(listOnlyAPI{}, struct{ ID int }{})
	require.Error(t, err)

	_, err = baldr.NewResourceAPI(listOnlyAPI{}, struct{ ID int }{}, baldr.WithName("anons"))
	assert.NoError(t, err)
}

func TestNewResourceAPI_rejects_invalid_id_pattern(t *testing.T) {
	t.Parallel()

	_, err := baldr.NewResourceAPI(listOnlyAPI{}, item{}, baldr.WithIDPattern("["))
	assert.Error(t, err)
}

func TestNewResourceAPI_rejects_unknown_capability(t *testing.T) {
	t.Parallel()

	_, err := baldr.NewResourceAPI(listOnlyAPI{}, item{}, baldr.WithCapabilities(baldr.Capability("bogus")))
	assert.Error(t, err)
}

func TestNewResourceAPI_rejects_conflicting_action_bindings(t *testing.T) {
	t.Parallel()

	noop := func(_ *http.Request, _ baldr.Params) (any, error) { return nil, nil }

	_, err := baldr.NewResourceAPI(listOnlyAPI{}, item{},
		baldr.WithListAction("export", noop),
		baldr.WithListAction("export", noop),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting handler binding")
}

func TestNewResourceAPI_rejects_invalid_action_names(t *testing.T) {
	t.Parallel()

	noop := func(_ *http.Request, _ baldr.Params) (any, error) { return nil, nil }

	_, err := baldr.NewResourceAPI(listOnlyAPI{}, item{}, baldr.WithListAction("not/a/name", noop))
	assert.Error(t, err)

	_, err = baldr.NewResourceAPI(listOnlyAPI{}, item{}, baldr.WithListAction("export", nil))
	assert.Error(t, err)
}

func TestResourceAPI_custom_id_pattern(t *testing.T) {
	t.Parallel()

	api, err := baldr.NewResourceAPI(echoAPI{}, item{}, baldr.WithIDPattern(`[a-f0-9-]+`))
	require.NoError(t, err)
	c := baldr.NewCollection("api", api)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/a1b2-c3/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResourceAPI_url_prefix(t *testing.T) {
	t.Parallel()

	api, err := baldr.NewResourceAPI(listOnlyAPI{}, item{}, baldr.WithURLPrefix("internal/"))
	require.NoError(t, err)
	c := baldr.NewCollection("api", api)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/internal/items/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceAPI_custom_codec_registry(t *testing.T) {
	t.Parallel()

	// CBOR-only registry: JSON is no longer negotiable.
	api, err := baldr.NewResourceAPI(listOnlyAPI{}, item{},
		baldr.WithCodecs(baldr.NewCodecRegistry(baldr.CBORCodec{})),
		baldr.WithResolvers(baldr.DefaultResolvers("application/cbor")...),
	)
	require.NoError(t, err)
	c := baldr.NewCollection("api", api)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/cbor", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodGet, "/api/items/", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	c.ServeHTTP(rec, req)
	// The default resolver still lands on CBOR, so the request succeeds in
	// the only format the API speaks.
	assert.Equal(t, "application/cbor", rec.Header().Get("Content-Type"))
}
