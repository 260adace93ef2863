package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"vinyl/internal/api"
)

func TestFetchPlaylistYouTubePagesAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/playlists":
			if query.Get("id") != "PLroadtrip" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, `{"items":[{"id":"PLroadtrip","snippet":{"title":"Road Trip"}}]}`)
		case "/playlistItems":
			if query.Get("playlistId") != "PLroadtrip" || query.Get("maxResults") != "50" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			switch query.Get("pageToken") {
			case "":
				fmt.Fprint(w, `{"items":[
					{"id":"i1","snippet":{"title":"Song One","resourceId":{"videoId":"vid1"}}},
					{"id":"i2","snippet":{"title":"Deleted video","resourceId":{"videoId":"gone"}}},
					{"id":"i3","snippet":{"title":"Private video","resourceId":{"videoId":"hidden"}}},
					{"id":"i4","snippet":{"title":"No Resource"}}
				],"nextPageToken":"page2"}`)
			case "page2":
				fmt.Fprint(w, `{"items":[{"id":"i5","snippet":{"title":"Song Two","resourceId":{"videoId":"vid2"}}}]}`)
			default:
				w.WriteHeader(http.StatusBadRequest)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := api.New("test-key", api.WithBaseURL(srv.URL))
	playlist, tracks, err := client.FetchPlaylist(context.Background(), "PLroadtrip")
	if err != nil {
		t.Fatalf("FetchPlaylist: %v", err)
	}
	if playlist.Title != "Road Trip" || playlist.SourceID != "PLroadtrip" {
		t.Fatalf("playlist = %q / %q", playlist.Title, playlist.SourceID)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	if tracks[0].Title != "Song One" || tracks[0].SourceID != "vid1" {
		t.Fatalf("track 0 = %q / %q", tracks[0].Title, tracks[0].SourceID)
	}
	if tracks[1].Title != "Song Two" || tracks[1].SourceID != "vid2" {
		t.Fatalf("track 1 = %q / %q", tracks[1].Title, tracks[1].SourceID)
	}
}

func TestFetchPlaylistYouTubeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	client := api.New("test-key", api.WithBaseURL(srv.URL))
	_, _, err := client.FetchPlaylist(context.Background(), "PLnothere")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchPlaylistInvidiousFallsBackAndDedupes(t *testing.T) {
	var badHits atomic.Int64
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		badHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/playlists/PLmix" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"title":"Mix","playlistId":"PLmix","videos":[
				{"title":"One","videoId":"v1","index":0},
				{"title":"[Deleted video]","videoId":"vx","index":1},
				{"title":"Two","videoId":"v2","index":2}]}`)
		case "2":
			fmt.Fprint(w, `{"title":"Mix","playlistId":"PLmix","videos":[
				{"title":"Two","videoId":"v2","index":2},
				{"title":"Three","videoId":"v3","index":3}]}`)
		default:
			fmt.Fprint(w, `{"title":"Mix","playlistId":"PLmix","videos":[]}`)
		}
	}))
	defer good.Close()

	client := api.New("", api.WithInstances([]string{bad.URL, good.URL}))
	playlist, tracks, err := client.FetchPlaylist(context.Background(), "PLmix")
	if err != nil {
		t.Fatalf("FetchPlaylist: %v", err)
	}
	if badHits.Load() == 0 {
		t.Fatal("first instance was never tried")
	}
	if playlist.Title != "Mix" || playlist.SourceID != "PLmix" {
		t.Fatalf("playlist = %q / %q", playlist.Title, playlist.SourceID)
	}
	want := []struct{ title, id string }{{"One", "v1"}, {"Two", "v2"}, {"Three", "v3"}}
	if len(tracks) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(tracks), len(want))
	}
	for i, track := range tracks {
		if track.Title != want[i].title || track.SourceID != want[i].id {
			t.Fatalf("track %d = %q / %q, want %q / %q", i, track.Title, track.SourceID, want[i].title, want[i].id)
		}
	}
}

func TestFetchPlaylistNoInstanceAnswers(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	client := api.New("", api.WithInstances([]string{down.URL, down.URL}))
	_, _, err := client.FetchPlaylist(context.Background(), "PLmix")
	if !errors.Is(err, api.ErrNoInstances) {
		t.Fatalf("err = %v, want ErrNoInstances", err)
	}
}
