// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/olegiv/folio/internal/store"
)

func TestSiteConfig_PutAndGet(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPut, "/api/site-config", `{"key":"site_title","value":"My Site"}`)
	assertStatus(t, rr, http.StatusUnauthorized)

	rr = ts.do(http.MethodPut, "/api/site-config", `{"key":"site_title","value":"My Site"}`, asAdmin)
	assertStatus(t, rr, http.StatusOK)
	rr = ts.do(http.MethodPut, "/api/site-config", `{"key":"social","value":{"github":"example","links":[1,2]}}`, asAdmin)
	assertStatus(t, rr, http.StatusOK)

	rr = ts.do(http.MethodGet, "/api/site-config", nil)
	assertStatus(t, rr, http.StatusOK)
	values := dataOf[map[string]json.RawMessage](t, rr)
	if string(values["site_title"]) != `"My Site"` {
		t.Errorf("site_title = %s", values["site_title"])
	}
	if string(values["social"]) != `{"github":"example","links":[1,2]}` {
		t.Errorf("social = %s", values["social"])
	}

	rr = ts.do(http.MethodGet, "/api/site-config?key=site_title", nil)
	assertStatus(t, rr, http.StatusOK)
	entry := dataOf[store.SiteConfig](t, rr)
	if entry.Key != "site_title" || string(entry.Value) != `"My Site"` {
		t.Errorf("entry = %+v", entry)
	}

	rr = ts.do(http.MethodGet, "/api/site-config?key=missing", nil)
	assertStatus(t, rr, http.StatusNotFound)

	for _, body := range []string{`{"value":1}`, `{"key":"has space","value":1}`, `{"key":"k"}`} {
		rr = ts.do(http.MethodPut, "/api/site-config", body, asAdmin)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rr.Code)
		}
	}
}

func TestSiteConfig_Batch(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/site-config", `[
		{"key":"a","value":1},
		{"key":"","value":2},
		"not an object",
		{"key":"b","value":null}
	]`, asAdmin)
	assertStatus(t, rr, http.StatusOK)

	resp := decode[BatchSiteConfigResponse](t, rr)
	if !resp.Success || resp.Updated != 2 || len(resp.Data) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Skipped) != 2 || resp.Skipped[0].Index != 1 || resp.Skipped[1].Index != 2 {
		t.Errorf("skipped = %+v", resp.Skipped)
	}

	b, err := ts.mem.GetSiteConfig(context.Background(), "b")
	if err != nil {
		t.Fatalf("GetSiteConfig(b): %v", err)
	}
	if string(b.Value) != "null" {
		t.Errorf("b = %s, want null", b.Value)
	}

	rr = ts.do(http.MethodPost, "/api/site-config", `{"items":[{"key":"c","value":"x"}]}`, asAdmin)
	assertStatus(t, rr, http.StatusOK)

	rr = ts.do(http.MethodPost, "/api/site-config", `[{"key":""}]`, asAdmin)
	assertStatus(t, rr, http.StatusBadRequest)
	if resp := decode[BatchSiteConfigResponse](t, rr); resp.Success || len(resp.Skipped) != 1 {
		t.Errorf("all-invalid response = %+v", resp)
	}

	rr = ts.do(http.MethodPost, "/api/site-config", `{"key":"a","value":1}`, asAdmin)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestSiteConfig_BatchRollsBack(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPut, "/api/site-config", `{"key":"a","value":"old"}`, asAdmin)
	assertStatus(t, rr, http.StatusOK)

	ts.mem.Fail = func(op, key string) error {
		if op == "UpsertSiteConfig" && key == "c" {
			return errors.New("disk full")
		}
		return nil
	}

	rr = ts.do(http.MethodPost, "/api/site-config", `[
		{"key":"a","value":"new"},
		{"key":"b","value":"new"},
		{"key":"c","value":"new"}
	]`, asAdmin)
	assertStatus(t, rr, http.StatusInternalServerError)

	ts.mem.Fail = nil
	entries, err := ts.mem.ListSiteConfig(context.Background())
	if err != nil {
		t.Fatalf("ListSiteConfig: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "a" || string(entries[0].Value) != `"old"` {
		t.Errorf("config after failed batch = %+v", entries)
	}
}

func TestSiteConfig_Delete(t *testing.T) {
	ts := newTestServer(t)

	ts.do(http.MethodPut, "/api/site-config", `{"key":"gone","value":true}`, asAdmin)

	rr := ts.do(http.MethodDelete, "/api/site-config", nil, asAdmin)
	assertStatus(t, rr, http.StatusBadRequest)

	rr = ts.do(http.MethodDelete, "/api/site-config?key=gone", nil, asAdmin)
	assertStatus(t, rr, http.StatusOK)

	rr = ts.do(http.MethodDelete, "/api/site-config?key=gone", nil, asAdmin)
	assertStatus(t, rr, http.StatusNotFound)
}
