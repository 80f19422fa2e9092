package store

import (
	"slices"
	"sort"
)

// History is the persisted publication ledger.
//
// Files maps a candidate identifier (its source path) to the digest of the
// content published under it. UploadDates lists ISO calendar dates
// (YYYY-MM-DD) in the order publications happened. The sequence does not
// enforce uniqueness itself; the daily gate does.
type History struct {
	Files       map[string]string `json:"files"`
	UploadDates []string          `json:"upload_dates"`
}

// Entry is one identifier/digest pair from History.Files.
type Entry struct {
	ID     string `json:"id"`
	Digest string `json:"digest"`
}

// NewHistory returns an empty, valid History.
func NewHistory() History {
	return History{
		Files:       map[string]string{},
		UploadDates: []string{},
	}
}

// normalize fills in missing fields so a partially populated document still
// behaves as a valid History.
func (h History) normalize() History {
	if h.Files == nil {
		h.Files = map[string]string{}
	}
	if h.UploadDates == nil {
		h.UploadDates = []string{}
	}
	return h
}

// Clone returns a deep copy.
func (h History) Clone() History {
	out := History{
		Files:       make(map[string]string, len(h.Files)),
		UploadDates: make([]string, len(h.UploadDates)),
	}
	for id, d := range h.Files {
		out.Files[id] = d
	}
	copy(out.UploadDates, h.UploadDates)
	return out
}

// IsDateUsed reports whether date is present in UploadDates.
func (h History) IsDateUsed(date string) bool {
	return slices.Contains(h.UploadDates, date)
}

// HasDigest reports whether digest was recorded under any identifier.
func (h History) HasDigest(digest string) bool {
	for _, d := range h.Files {
		if d == digest {
			return true
		}
	}
	return false
}

// RecordPublication returns a new History with id→digest set and date
// appended. The receiver is not modified and nothing is persisted.
func (h History) RecordPublication(id, digest, date string) History {
	out := h.normalize().Clone()
	out.Files[id] = digest
	out.UploadDates = append(out.UploadDates, date)
	return out
}

// Entries returns the Files mapping sorted by identifier.
func (h History) Entries() []Entry {
	entries := make([]Entry, 0, len(h.Files))
	for id, d := range h.Files {
		entries = append(entries, Entry{ID: id, Digest: d})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// LastDate returns the most recently appended date.
func (h History) LastDate() (string, bool) {
	if len(h.UploadDates) == 0 {
		return "", false
	}
	return h.UploadDates[len(h.UploadDates)-1], true
}
