package session

import (
	"errors"
	"testing"

	"github.com/moqtail/moqt-go/moqtype"
)

func mustFullTrackName(ns string, name string) moqtype.FullTrackName {
	return moqtype.NewFullTrackName(moqtype.TuplePath(ns), name)
}

func TestTrackAliasTableAddLookupRemove(t *testing.T) {
	tbl := newTrackAliasTable()
	name := mustFullTrackName("live/camera1", "video")

	if err := tbl.Add(7, name); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, ok := tbl.Lookup(7)
	if !ok || !got.Equal(name) {
		t.Fatalf("Lookup = %+v, %v, want %+v, true", got, ok, name)
	}

	tbl.Remove(7)
	if _, ok := tbl.Lookup(7); ok {
		t.Fatalf("Lookup after Remove: still present")
	}
}

func TestTrackAliasTableDuplicateRejected(t *testing.T) {
	tbl := newTrackAliasTable()
	name := mustFullTrackName("live/camera1", "video")
	if err := tbl.Add(7, name); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := tbl.Add(7, mustFullTrackName("live/camera2", "video"))
	if err == nil {
		t.Fatalf("Add duplicate: want error, got nil")
	}
	var term *Termination
	if !errors.As(err, &term) || term.Code != DuplicateTrackAlias {
		t.Fatalf("err = %v, want DuplicateTrackAlias Termination", err)
	}
}

func TestTrackAliasTableReassign(t *testing.T) {
	tbl := newTrackAliasTable()
	name := mustFullTrackName("live/camera1", "video")
	if err := tbl.Add(7, name); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Reassign(7, 8, name); err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if _, ok := tbl.Lookup(7); ok {
		t.Fatalf("old alias 7 still present after Reassign")
	}
	got, ok := tbl.Lookup(8)
	if !ok || !got.Equal(name) {
		t.Fatalf("Lookup(8) = %+v, %v", got, ok)
	}
}

func TestTrackAliasTableReassignConflict(t *testing.T) {
	tbl := newTrackAliasTable()
	a := mustFullTrackName("live/camera1", "video")
	b := mustFullTrackName("live/camera2", "video")
	if err := tbl.Add(7, a); err != nil {
		t.Fatalf("Add 7: %v", err)
	}
	if err := tbl.Add(8, b); err != nil {
		t.Fatalf("Add 8: %v", err)
	}
	if err := tbl.Reassign(7, 8, a); err == nil {
		t.Fatalf("Reassign into occupied alias: want error")
	}
}
