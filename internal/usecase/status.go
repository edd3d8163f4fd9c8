package usecase

import (
	"sort"
	"time"

	"hirarag/internal/port"
)

// BoardStatus is one board's sync watermark and file count.
type BoardStatus struct {
	BoardID   string     `json:"boardId"`
	Name      string     `json:"name"`
	LastSync  *time.Time `json:"lastSync"`
	FileCount int        `json:"fileCount"`
}

// Status is the diagnostics snapshot exposed by the status command and the
// status endpoint.
type Status struct {
	LastSync      *time.Time    `json:"lastSync"`
	TotalFiles    int           `json:"totalFiles"`
	IndexState    string        `json:"indexState"`
	IndexedChunks int           `json:"indexedChunks"`
	Protocols     int           `json:"protocols"`
	Boards        []BoardStatus `json:"boards"`
}

func indexStateLabel(s port.IndexState) string {
	switch s {
	case port.IndexPopulated:
		return "populated"
	case port.IndexDisabled:
		return "disabled"
	default:
		return "empty"
	}
}

// BuildStatus assembles the snapshot from the metadata store, the vector
// index and the criteria database.
func BuildStatus(store port.MetadataStore, index port.VectorIndex, criteria *CriteriaAnalyzer) Status {
	meta := store.Metadata()

	st := Status{
		LastSync:      meta.LastSync,
		TotalFiles:    len(meta.Files),
		IndexState:    indexStateLabel(index.State()),
		IndexedChunks: index.Count(),
	}
	if criteria != nil {
		st.Protocols = criteria.ProtocolCount()
	}

	counts := map[string]int{}
	for _, f := range meta.Files {
		counts[f.BoardID]++
	}
	for _, b := range meta.Boards {
		st.Boards = append(st.Boards, BoardStatus{
			BoardID:   b.BoardID,
			Name:      b.Name,
			LastSync:  b.LastSync,
			FileCount: counts[b.BoardID],
		})
	}
	sort.Slice(st.Boards, func(i, j int) bool { return st.Boards[i].BoardID < st.Boards[j].BoardID })
	return st
}
