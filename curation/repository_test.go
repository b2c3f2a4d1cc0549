// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wildframe/folio/spatial"
)

func setupTestDB(t *testing.T) (*sql.DB, LocationNameRepository) {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	repo := NewLocationNameRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db, repo
}

func TestCreateSchema(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	var tableName string

	err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'location_names'").Scan(&tableName)
	if err != nil {
		t.Fatalf("Table not created: %v", err)
	}

	if tableName != "location_names" {
		t.Errorf("Expected table 'location_names', got '%s'", tableName)
	}
}

func TestSaveAndGetLocationName(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	lat := 52.9304
	lng := -118.1011

	name := &LocationName{
		PhotoID:    "photo-1",
		Point:      &spatial.Point{Lat: lat, Lng: lng},
		Name:       "Pyramid Lake",
		Country:    "Canada",
		Method:     MethodPlaceDetails,
		Confidence: "high",
		Notes:      "Checked against the trail map",
	}

	if err := repo.Save(name); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	retrieved, err := repo.Get("photo-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if retrieved.Name != "Pyramid Lake" {
		t.Errorf("Name = %s, want Pyramid Lake", retrieved.Name)
	}

	if retrieved.Country != "Canada" {
		t.Errorf("Country = %s, want Canada", retrieved.Country)
	}

	if retrieved.Point == nil || retrieved.Point.Lat != lat || retrieved.Point.Lng != lng {
		t.Errorf("Point = %v, want %f,%f", retrieved.Point, lat, lng)
	}

	if retrieved.Method != MethodPlaceDetails {
		t.Errorf("Method = %s, want %s", retrieved.Method, MethodPlaceDetails)
	}

	wantCell, err := spatial.Point{Lat: lat, Lng: lng}.Cell(H3Resolution)
	if err != nil {
		t.Fatal(err)
	}

	if retrieved.H3Res9 != wantCell {
		t.Errorf("H3Res9 = %d, want %d", retrieved.H3Res9, wantCell)
	}
}

func TestGetMissingLocationName(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	_, err := repo.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateLocationName(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	name := &LocationName{
		PhotoID:    "photo-1",
		Point:      &spatial.Point{Lat: 52.9304, Lng: -118.1011},
		Name:       "Jasper, Alberta",
		Method:     MethodGoogleMaps,
		Confidence: "medium",
	}

	if err := repo.Save(name); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	originalCreatedAt := name.CreatedAt
	originalUpdatedAt := name.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	name.Name = "Pyramid Lake"
	name.Method = MethodManual
	name.Confidence = "high"
	name.Notes = "Corrected after review"

	if err := repo.Save(name); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}

	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	retrieved, err := repo.Get("photo-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if retrieved.Name != "Pyramid Lake" {
		t.Errorf("Name = %s, want Pyramid Lake", retrieved.Name)
	}

	if retrieved.Notes != "Corrected after review" {
		t.Errorf("Notes = %s, want 'Corrected after review'", retrieved.Notes)
	}

	if !retrieved.UpdatedAt.After(originalUpdatedAt) {
		t.Error("UpdatedAt should be after original")
	}

	if !retrieved.CreatedAt.Equal(originalCreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", retrieved.CreatedAt, originalCreatedAt)
	}
}

func TestSaveWithoutPoint(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	name := &LocationName{
		PhotoID:    "photo-9",
		Name:       "Somerset Levels",
		Country:    "UK",
		Method:     MethodManualInput,
		Confidence: "high",
	}

	if err := repo.Save(name); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	retrieved, err := repo.Get("photo-9")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if retrieved.Point != nil {
		t.Errorf("Point = %v, want nil", retrieved.Point)
	}

	if retrieved.H3Res9 != 0 {
		t.Errorf("H3Res9 = %d, want 0", retrieved.H3Res9)
	}
}

func TestListAndSorted(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	for _, id := range []string{"photo-c", "photo-a", "photo-b"} {
		if err := repo.Save(&LocationName{PhotoID: id, Name: "Name " + id, Method: MethodManual, Confidence: "high"}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}

		time.Sleep(2 * time.Millisecond)
	}

	recent, err := repo.List(2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(recent) != 2 || recent[0].PhotoID != "photo-b" || recent[1].PhotoID != "photo-a" {
		t.Errorf("List(2, 0) = %v, want photo-b, photo-a", ids(recent))
	}

	rest, err := repo.List(2, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(rest) != 1 || rest[0].PhotoID != "photo-c" {
		t.Errorf("List(2, 2) = %v, want photo-c", ids(rest))
	}

	sorted, err := repo.AllSorted()
	if err != nil {
		t.Fatalf("AllSorted() error = %v", err)
	}

	if got := ids(sorted); len(got) != 3 || got[0] != "photo-a" || got[1] != "photo-b" || got[2] != "photo-c" {
		t.Errorf("AllSorted() = %v", got)
	}
}

func ids(names []*LocationName) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.PhotoID)
	}

	return out
}

func TestCountByMethodAndOverrides(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	names := []*LocationName{
		{PhotoID: "a", Name: "Pyramid Lake", Country: "Canada", Method: MethodPlaceDetails, Confidence: "high"},
		{PhotoID: "b", Name: "Maligne Canyon", Country: "Canada", Method: MethodPlaceDetails, Confidence: "high"},
		{PhotoID: "c", Name: "Somerset Levels", Method: MethodManual, Confidence: "high"},
	}

	if err := repo.BulkInsert(names); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	byMethod, err := repo.CountByMethod()
	if err != nil {
		t.Fatalf("CountByMethod() error = %v", err)
	}

	if byMethod[MethodPlaceDetails] != 2 || byMethod[MethodManual] != 1 {
		t.Errorf("CountByMethod() = %v", byMethod)
	}

	overrides, err := repo.Overrides()
	if err != nil {
		t.Fatalf("Overrides() error = %v", err)
	}

	if len(overrides) != 3 || overrides["b"].Name != "Maligne Canyon" || overrides["a"].Country != "Canada" {
		t.Errorf("Overrides() = %v", overrides)
	}

	if err := repo.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	if count, _ := repo.Count(); count != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", count)
	}
}

func TestNearbyConfirmed(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	lake := spatial.Point{Lat: 52.9304, Lng: -118.1011}

	if err := repo.Save(&LocationName{
		PhotoID:    "lake",
		Point:      &lake,
		Name:       "Pyramid Lake",
		Method:     MethodManual,
		Confidence: "high",
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// about 11m away
	near := spatial.Point{Lat: 52.9305, Lng: -118.1011}

	got, err := repo.NearbyConfirmed(near)
	if err != nil {
		t.Fatalf("NearbyConfirmed() error = %v", err)
	}

	if got.PhotoID != "lake" {
		t.Errorf("NearbyConfirmed() = %s, want lake", got.PhotoID)
	}

	// about 11km away
	far := spatial.Point{Lat: 53.03, Lng: -118.1011}

	if _, err := repo.NearbyConfirmed(far); !errors.Is(err, ErrNotFound) {
		t.Errorf("NearbyConfirmed(far) error = %v, want ErrNotFound", err)
	}
}
