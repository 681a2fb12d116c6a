package service_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dargueta/ds3fs/ds3test"
	"github.com/dargueta/ds3fs/dserrors"
	"github.com/dargueta/ds3fs/service"
	"github.com/stretchr/testify/require"
)

func TestPutGetDeleteRoundTrip(t *testing.T) {
	dev, engine := ds3test.NewFormattedDevice(t, 64, 16)
	svc := service.New(dev, engine)

	require.NoError(t, svc.Put("/docs/readme.txt", []byte("hello")))

	contents, entries, err := svc.Get("/docs/readme.txt")
	require.NoError(t, err)
	require.Nil(t, entries)
	require.Equal(t, []byte("hello"), contents)

	_, dirEntries, err := svc.Get("/docs/")
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	require.Equal(t, "readme.txt", dirEntries[0].Name)

	require.NoError(t, svc.Delete("/docs/readme.txt"))

	_, _, err = svc.Get("/docs/readme.txt")
	require.Error(t, err)
}

func TestDelete_IdempotentOnMissingLeafName(t *testing.T) {
	dev, engine := ds3test.NewFormattedDevice(t, 64, 16)
	svc := service.New(dev, engine)
	require.NoError(t, svc.Put("/docs/readme.txt", []byte("hello")))
	require.NoError(t, svc.Delete("/docs/never-existed.txt"))
}

func TestDelete_UnresolvableParentIsNotFound(t *testing.T) {
	dev, engine := ds3test.NewFormattedDevice(t, 64, 16)
	svc := service.New(dev, engine)
	require.ErrorIs(t, svc.Delete("/never/existed"), dserrors.ErrNotFound)
}

func TestHandler_HTTPRoundTrip(t *testing.T) {
	dev, engine := ds3test.NewFormattedDevice(t, 64, 16)
	svc := service.New(dev, engine)
	handler := service.NewHandler(svc)

	server := httptest.NewServer(handler)
	defer server.Close()

	client := server.Client()

	putReq, err := http.NewRequest(http.MethodPut, server.URL+"/notes.txt", strings.NewReader("hi"))
	require.NoError(t, err)
	putResp, err := client.Do(putReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	getResp, err := client.Get(server.URL + "/notes.txt")
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	getMissingResp, err := client.Get(server.URL + "/nope.txt")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, getMissingResp.StatusCode)
}
