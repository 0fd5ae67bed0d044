package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/s3"
	"github.com/kartik-turing/repo-scanner-frontend/internal/resource"
)

// fakeAPI is an in-memory scanning API with two partners.
type fakeAPI struct {
	mu       sync.Mutex
	partners []map[string]any
	created  []map[string]any
	patched  map[string]map[string]any
	deleted  []string
	fail     bool
	// failing lists answer 500 for these collections only.
	failing map[string]bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		partners: []map[string]any{
			{
				"id": "p1", "name": "Northwind", "city": "Oslo", "address": "Storgata 1",
				"primaryContact": "Ada", "contactEmail": "ada@northwind.test", "contactPhone": "555-0100",
				"website": "northwind.test", "createdAt": "2024-01-02T10:00:00.000Z",
			},
			{
				"id": "p2", "name": "Contoso", "city": "Lisbon", "address": "Rua 2",
				"primaryContact": "Bo", "contactEmail": "bo@contoso.test", "contactPhone": "555-0101",
				"website": "https://contoso.test", "createdAt": "2024-02-03T11:00:00.000Z",
			},
		},
		patched: make(map[string]map[string]any),
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{collection}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail || f.failing[r.PathValue("collection")] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		data := []map[string]any{}
		if r.PathValue("collection") == resource.CollectionPartners {
			data = f.partners
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
	mux.HandleFunc("POST /api/{collection}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Partner created"})
	})
	mux.HandleFunc("PATCH /api/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.patched[r.PathValue("id")] = body
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Partner updated"})
	})
	mux.HandleFunc("DELETE /api/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// fakeS3 records PutObject calls.
type fakeS3 struct {
	bucket, key, contentType string
	body                     string
}

func (f *fakeS3) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if in.ContentType != nil {
		f.contentType = *in.ContentType
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(in.Body)
	f.body = buf.String()
	return &awss3.PutObjectOutput{}, nil
}

type harness struct {
	api  *fakeAPI
	srv  *httptest.Server
	s3   *fakeS3
	opts *options
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(envAPIURL, "")
	t.Setenv(envAPIToken, "")
	t.Setenv(envContext, "")
	t.Setenv(envConfig, filepath.Join(t.TempDir(), "config.yaml"))

	h := &harness{api: newFakeAPI(), s3: &fakeS3{}}
	h.srv = httptest.NewServer(h.api.handler())
	t.Cleanup(h.srv.Close)
	return h
}

// run executes one CLI invocation against the fake API.
func (h *harness) run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	o := &options{
		registry:    resource.MustRegistry(),
		searchDelay: time.Second,
		newUploader: func(context.Context, s3.Config) (*s3.Uploader, error) {
			return s3.NewUploaderWithClient(h.s3), nil
		},
	}
	root := newRootCmd(o)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	if len(args) > 0 && args[0] != "config" && args[0] != "version" && args[0] != "api-resources" {
		args = append(args, "--api-url", h.srv.URL, "--api-token", "test-token")
	}
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}
