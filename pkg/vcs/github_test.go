package vcs_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-github/v60/github"

	"github.com/pacmancoder/cargo-monorepo/pkg/vcs"
)

const sha = "0123456789abcdef0123456789abcdef01234567"

func newGitHub(t *testing.T, mux *http.ServeMux) *vcs.GitHubClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	u, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client.BaseURL = u
	client.UploadURL = u
	return vcs.NewGitHubClientWith(client, vcs.Repo{Owner: "acme", Name: "monorepo"})
}

func TestGitHub_CheckCommit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/monorepo/commits/"+sha+"/status", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"state":"success","sha":"`+sha+`"}`)
	})
	gh := newGitHub(t, mux)

	if err := gh.CheckCommit(context.Background(), sha); err != nil {
		t.Fatalf("check commit: %v", err)
	}
	if err := gh.CheckCommit(context.Background(), "ffffffffffffffffffffffffffffffffffffffff"); err == nil {
		t.Fatal("expected error for unknown commit")
	}
}

func TestGitHub_TagExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/monorepo/git/ref/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ref":"refs/tags/v1.0.0","object":{"sha":"`+sha+`"}}`)
	})
	mux.HandleFunc("GET /repos/acme/monorepo/git/ref/tags/v2.0.0", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not Found"}`)
	})
	gh := newGitHub(t, mux)

	exists, err := gh.TagExists(context.Background(), "v1.0.0")
	if err != nil || !exists {
		t.Fatalf("v1.0.0 exists=%v err=%v", exists, err)
	}
	exists, err = gh.TagExists(context.Background(), "v2.0.0")
	if err != nil || exists {
		t.Fatalf("v2.0.0 exists=%v err=%v", exists, err)
	}
}

func TestGitHub_CreateTag(t *testing.T) {
	var got github.Reference
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/monorepo/git/refs", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"ref":"refs/tags/v1.2.0"}`)
	})
	gh := newGitHub(t, mux)

	if err := gh.CreateTag(context.Background(), "v1.2.0", sha); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if got.GetRef() != "refs/tags/v1.2.0" {
		t.Fatalf("ref=%q", got.GetRef())
	}
}

func TestGitHub_CreateReleaseAndUpload(t *testing.T) {
	var release github.RepositoryRelease
	var uploadedName string
	var uploaded []byte
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/monorepo/releases", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&release); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":42}`)
	})
	mux.HandleFunc("POST /repos/acme/monorepo/releases/42/assets", func(w http.ResponseWriter, r *http.Request) {
		uploadedName = r.URL.Query().Get("name")
		uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":7}`)
	})
	gh := newGitHub(t, mux)

	id, err := gh.CreateRelease(context.Background(), vcs.ReleaseRequest{Tag: "v1.2.0", Title: "monorepo v1.2.0", Body: "notes"})
	if err != nil {
		t.Fatalf("create release: %v", err)
	}
	if id != 42 {
		t.Fatalf("id=%d", id)
	}
	if release.GetTagName() != "v1.2.0" || release.GetName() != "monorepo v1.2.0" || release.GetBody() != "notes" {
		t.Fatalf("release request %+v", release)
	}

	asset := filepath.Join(t.TempDir(), "tool-x86_64.tar.gz")
	if err := os.WriteFile(asset, []byte("binary"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	if err := gh.UploadAsset(context.Background(), id, asset); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if uploadedName != "tool-x86_64.tar.gz" || string(uploaded) != "binary" {
		t.Fatalf("uploaded name=%q body=%q", uploadedName, uploaded)
	}
}
