package dataset

import "github.com/NomuraAI/SIGADES-sub000/internal/domain/project"

// Op classifies a planned write.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
)

// Write is one classified record. Inserts carry no id; updates carry the
// id of the stored record they replace.
type Write struct {
	Op     Op
	Record project.Project
}

// Plan is the ordered output of reconciliation.
type Plan struct {
	Writes  []Write
	Inserts int
	Updates int
	// Orphaned lists ids of stored records that shared a natural key with a
	// later stored record. They are left untouched.
	Orphaned []string
}

// Reconcile matches candidates against the stored records of one version by
// natural key. A match becomes an UPDATE of the stored record's id; anything
// else becomes an INSERT. When stored records share a key the last one wins.
func Reconcile(existing, candidates []project.Project) Plan {
	byKey := make(map[string]project.Project, len(existing))
	var orphaned []string
	for _, rec := range existing {
		key := rec.NaturalKey()
		if prev, ok := byKey[key]; ok {
			orphaned = append(orphaned, prev.ID)
		}
		byKey[key] = rec
	}

	plan := Plan{Writes: make([]Write, 0, len(candidates)), Orphaned: orphaned}
	for _, cand := range candidates {
		if stored, ok := byKey[cand.NaturalKey()]; ok {
			stored.ReplaceFrom(cand)
			plan.Writes = append(plan.Writes, Write{Op: OpUpdate, Record: stored})
			plan.Updates++
			continue
		}
		cand.ID = ""
		plan.Writes = append(plan.Writes, Write{Op: OpInsert, Record: cand})
		plan.Inserts++
	}
	return plan
}

// AppendAll classifies every candidate as an INSERT without looking at stored records.
func AppendAll(candidates []project.Project) Plan {
	plan := Plan{Writes: make([]Write, 0, len(candidates))}
	for _, cand := range candidates {
		cand.ID = ""
		plan.Writes = append(plan.Writes, Write{Op: OpInsert, Record: cand})
		plan.Inserts++
	}
	return plan
}
