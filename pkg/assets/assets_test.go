package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/navtree/pkg/router"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"users.html":    {Data: []byte("<h1>Users</h1>")},
		"404.html":      {Data: []byte("<h1>Not found</h1>")},
		"nested/a.html": {Data: []byte("<p>a</p>")},
		"manifest.json": {Data: []byte(`{"users.css": "users.abc123.css", "users.js": "users.def456.js"}`)},
		"broken.json":   {Data: []byte(`{`)},
		"empty.json":    {Data: []byte(`null`)},
	}
}

func TestDirSourceFetch(t *testing.T) {
	src := NewDirSource(testFS())
	ctx := context.Background()

	tests := []struct {
		ref  string
		want string
	}{
		{"users.html", "<h1>Users</h1>"},
		{"/users.html", "<h1>Users</h1>"},
		{"nested/a.html", "<p>a</p>"},
		{"../nested/a.html", "<p>a</p>"},
	}
	for _, tt := range tests {
		got, err := src.Fetch(ctx, tt.ref)
		if err != nil {
			t.Errorf("Fetch(%q) error: %v", tt.ref, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("Fetch(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestDirSourceErrors(t *testing.T) {
	src := NewDirSource(testFS())

	if _, err := src.Fetch(context.Background(), "missing.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want %v", err, ErrNotFound)
	}
	if _, err := src.Fetch(context.Background(), "  "); err == nil {
		t.Error("Fetch(blank) error = nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx, "users.html"); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() with canceled context error = %v, want %v", err, context.Canceled)
	}
}

type fakeS3 struct {
	objects map[string]string
	err     error
	gotKey  string
	bucket  string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.gotKey = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[f.gotKey]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceFetch(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"views/users.html": "<h1>Users</h1>"}}
	src := NewS3Source(client, "site", "views/")

	got, err := src.Fetch(context.Background(), "/users.html")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(got) != "<h1>Users</h1>" {
		t.Errorf("Fetch() = %q", got)
	}
	if client.bucket != "site" || client.gotKey != "views/users.html" {
		t.Errorf("GetObject(%q, %q), want site, views/users.html", client.bucket, client.gotKey)
	}

	if _, err := src.Fetch(context.Background(), "missing.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want %v", err, ErrNotFound)
	}

	boom := errors.New("network down")
	client.err = boom
	if _, err := src.Fetch(context.Background(), "users.html"); !errors.Is(err, boom) || errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want %v", err, boom)
	}
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	opts := client.Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q, want eu-west-1", opts.Region)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %q", aws.ToString(opts.BaseEndpoint))
	}
	if !opts.UsePathStyle {
		t.Error("UsePathStyle = false, want true")
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); err == nil {
		t.Error("envCredentials() error = nil without keys")
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatalf("envCredentials() error: %v", err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "secret" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestFingerprints(t *testing.T) {
	src := NewDirSource(testFS())

	fp, err := LoadFingerprints(context.Background(), src, "manifest.json")
	if err != nil {
		t.Fatalf("LoadFingerprints() error: %v", err)
	}
	if fp.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fp.Len())
	}

	tests := []struct {
		name string
		want string
	}{
		{"users.css", "users.abc123.css"},
		{"users.js", "users.def456.js"},
		{"other.css", "other.css"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := fp.Resolve(tt.name); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	fp.Set("other.css", "other.1.css")
	if got := fp.Resolve("other.css"); got != "other.1.css" {
		t.Errorf("Resolve(other.css) = %q after Set", got)
	}

	var none *Fingerprints
	if got := none.Resolve("a.css"); got != "a.css" {
		t.Errorf("nil Resolve() = %q, want a.css", got)
	}

	empty, err := LoadFingerprints(context.Background(), src, "empty.json")
	if err != nil {
		t.Fatalf("LoadFingerprints(empty) error: %v", err)
	}
	empty.Set("a", "b")

	if _, err := LoadFingerprints(context.Background(), src, "broken.json"); err == nil {
		t.Error("LoadFingerprints(broken) error = nil")
	}
	if _, err := LoadFingerprints(context.Background(), src, "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadFingerprints(missing) error = %v, want %v", err, ErrNotFound)
	}
}

func TestAssemble(t *testing.T) {
	src := NewDirSource(testFS())
	fp, err := LoadFingerprints(context.Background(), src, "manifest.json")
	if err != nil {
		t.Fatalf("LoadFingerprints() error: %v", err)
	}
	a := NewAssembler(src, WithFingerprints(fp), WithPrefix("/public/"))

	page := &router.Page{
		Path:  "/users",
		Route: "/users",
		View:  router.View{HTML: "users.html", CSS: "users.css", JSRef: "users"},
	}
	out, err := a.Assemble(context.Background(), page)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	want := `<link rel="stylesheet" href="/public/users.abc123.css">
<div data-navtree-route="/users" data-controller="users" data-src="/public/users.def456.js">
<h1>Users</h1>
</div>
`
	if string(out) != want {
		t.Errorf("Assemble() =\n%s\nwant\n%s", out, want)
	}
}

func TestAssembleNotFoundAndEmpty(t *testing.T) {
	a := NewAssembler(NewDirSource(testFS()))

	out, err := a.Assemble(context.Background(), &router.Page{
		Path:     "/nope",
		View:     router.View{HTML: "404.html"},
		NotFound: true,
	})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if !bytes.Contains(out, []byte("data-not-found")) || !bytes.Contains(out, []byte("<h1>Not found</h1>")) {
		t.Errorf("Assemble() = %s", out)
	}
	if bytes.Contains(out, []byte("<link")) {
		t.Errorf("Assemble() = %s, want no stylesheet", out)
	}

	out, err = a.Assemble(context.Background(), &router.Page{Route: "/range"})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if want := "<div data-navtree-route=\"/range\">\n\n</div>\n"; string(out) != want {
		t.Errorf("Assemble() = %q, want %q", out, want)
	}

	if _, err := a.Assemble(context.Background(), &router.Page{View: router.View{HTML: "gone.html"}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Assemble() error = %v, want %v", err, ErrNotFound)
	}
}

func TestAssemblerAsRenderer(t *testing.T) {
	tree := router.NewTree()
	if _, err := tree.AppendSegment("", "users", router.View{HTML: "users.html"}, router.Literal); err != nil {
		t.Fatalf("AppendSegment() error: %v", err)
	}
	r := router.New(tree, router.WithRenderer(NewAssembler(NewDirSource(testFS()))))

	page, err := r.Navigate(context.Background(), "/users")
	if err != nil {
		t.Fatalf("Navigate() error: %v", err)
	}
	if !strings.Contains(page.HTML, "<h1>Users</h1>") {
		t.Errorf("page.HTML = %q", page.HTML)
	}
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, ref string) ([]byte, error) {
		return []byte("ref:" + ref), nil
	})
	got, err := src.Fetch(context.Background(), "x")
	if err != nil || string(got) != "ref:x" {
		t.Errorf("Fetch() = %q, %v", got, err)
	}
}

func TestHandler(t *testing.T) {
	h := Handler(NewDirSource(testFS()))

	tests := []struct {
		method string
		path   string
		status int
		body   string
		ctype  string
	}{
		{http.MethodGet, "/users.html", http.StatusOK, "<h1>Users</h1>", "text/html; charset=utf-8"},
		{http.MethodGet, "nested/a.html", http.StatusOK, "<p>a</p>", "text/html; charset=utf-8"},
		{http.MethodGet, "/missing.css", http.StatusNotFound, "", ""},
		{http.MethodGet, "/", http.StatusNotFound, "", ""},
		{http.MethodPost, "/users.html", http.StatusMethodNotAllowed, "", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/", nil)
		req.URL.Path = tt.path
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
			continue
		}
		if tt.body != "" && rec.Body.String() != tt.body {
			t.Errorf("%s %s body = %q, want %q", tt.method, tt.path, rec.Body.String(), tt.body)
		}
		if tt.ctype != "" && rec.Header().Get("Content-Type") != tt.ctype {
			t.Errorf("%s %s Content-Type = %q, want %q", tt.method, tt.path, rec.Header().Get("Content-Type"), tt.ctype)
		}
	}
}

func TestHandlerSourceFailure(t *testing.T) {
	h := Handler(SourceFunc(func(context.Context, string) ([]byte, error) {
		return nil, io.ErrUnexpectedEOF
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a.css", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
