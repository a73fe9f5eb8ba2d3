package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/yungbote/survey-backend/internal/data/docstore"
	types "github.com/yungbote/survey-backend/internal/domain"
	"github.com/yungbote/survey-backend/internal/modules/survey"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

type fieldStats struct {
	Field string         `json:"field"`
	Count int            `json:"count"`
	Kinds map[string]int `json:"kinds"`
}

type roleStats struct {
	Role        types.Role   `json:"role"`
	Responses   int          `json:"responses"`
	FirstAt     *time.Time   `json:"first_submitted_at,omitempty"`
	LastAt      *time.Time   `json:"last_submitted_at,omitempty"`
	FieldCounts []fieldStats `json:"fields"`
}

type report struct {
	Path          string        `json:"path"`
	StoredSummary types.Summary `json:"stored_summary"`
	Recomputed    types.Summary `json:"recomputed_summary"`
	Consistent    bool          `json:"consistent"`
	Roles         []roleStats   `json:"roles"`
}

// Reads a survey document file without modifying it and prints a JSON inventory.
func main() {
	path := "data/survey-results.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	store := survey.NewStore(docstore.NewFileMedium(path, logger.Nop()), logger.Nop())
	set, stored, err := store.ReadAll(context.Background())
	if err != nil {
		exitf("read %s: %v", path, err)
	}

	rep := report{
		Path:          path,
		StoredSummary: stored,
		Recomputed:    survey.Aggregate(set),
	}
	rep.Consistent = rep.Recomputed.Equal(stored)
	for _, role := range []types.Role{types.RoleStudent, types.RoleProfessor} {
		rep.Roles = append(rep.Roles, buildRoleStats(role, set.ByRole(role)))
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if !rep.Consistent {
		os.Exit(2)
	}
}

func buildRoleStats(role types.Role, responses []types.Response) roleStats {
	rs := roleStats{Role: role, Responses: len(responses)}
	if len(responses) > 0 {
		first := responses[0].SubmittedAt
		last := responses[len(responses)-1].SubmittedAt
		rs.FirstAt, rs.LastAt = &first, &last
	}

	byField := map[string]*fieldStats{}
	for _, r := range responses {
		for key, v := range r.Fields {
			fs, ok := byField[key]
			if !ok {
				fs = &fieldStats{Field: key, Kinds: map[string]int{}}
				byField[key] = fs
			}
			fs.Count++
			fs.Kinds[v.Kind().String()]++
		}
	}
	keys := make([]string, 0, len(byField))
	for k := range byField {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rs.FieldCounts = append(rs.FieldCounts, *byField[k])
	}
	return rs
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
