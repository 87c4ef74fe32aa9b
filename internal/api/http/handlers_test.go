package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/roadprep/signquiz/internal/api/http"
	"github.com/roadprep/signquiz/internal/storage"
)

func signServer(t *testing.T) *httptest.Server {
	t.Helper()
	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	r.Route("/signs", func(r chi.Router) { api.MountSigns(r, bs) })
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func uploadSign(t *testing.T, ts *httptest.Server, path string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "upload.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestSignUploadRoundTrip(t *testing.T) {
	ts := signServer(t)
	img := []byte("png-bytes")

	resp := uploadSign(t, ts, "/signs/Warning%20Road%20Signs/Stop.png", img)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["key"] != "/signs/Warning Road Signs/Stop.png" {
		t.Errorf("canonical key = %q", out["key"])
	}

	get, err := ts.Client().Get(ts.URL + "/signs/Warning%20Road%20Signs/Stop.png")
	if err != nil {
		t.Fatal(err)
	}
	defer get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", get.StatusCode)
	}
	if ct := get.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	got, _ := io.ReadAll(get.Body)
	if !bytes.Equal(got, img) {
		t.Errorf("served bytes differ from upload")
	}
}

func TestSignUploadRequiresFile(t *testing.T) {
	ts := signServer(t)
	resp, err := ts.Client().Post(ts.URL+"/signs/Warning%20Road%20Signs/Stop.png", "text/plain", bytes.NewBufferString("x"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
