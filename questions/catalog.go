// questions/catalog.go - in-memory question catalog loaded from JSON files
package questions

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"ingresosgo/models"
)

// Source names the files of one subject.
type Source struct {
	Key     string // id prefix, e.g. "matematicas"
	Subject string // display name
	Normal  string
	General string
}

func DefaultSources() []Source {
	return []Source{
		{Key: "matematicas", Subject: "Matemáticas", Normal: "questions_matematicas.json", General: "questions_matematicas_general_final.json"},
		{Key: "castellano", Subject: "Castellano y Guaraní", Normal: "questions_castellano_normal_agresivo.json", General: "questions_castellano_general_completo.json"},
		{Key: "historia", Subject: "Historia y Geografía", Normal: "questions_historia_geografia_normal_mejorado.json", General: "questions_historia_geografia_general.json"},
		{Key: "legislacion", Subject: "Legislación", Normal: "questions_legislacion_normal.json", General: "questions_legislacion_general.json"},
	}
}

type TypeCounts struct {
	Total   int `json:"total"`
	Normal  int `json:"normal"`
	General int `json:"general"`
}

type Statistics struct {
	Total     int                   `json:"total"`
	BySubject map[string]TypeCounts `json:"bySubject"`
	ByType    map[string]int        `json:"byType"`
}

// LoadReport summarises a Load call.
type LoadReport struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Missing int `json:"missingFiles"`
}

type Catalog struct {
	dir     string
	sources []Source

	mu        sync.RWMutex
	questions []models.Question
	byID      map[string]int
}

func NewCatalog(dir string, sources []Source) *Catalog {
	return &Catalog{dir: dir, sources: sources, byID: map[string]int{}}
}

type fileResult struct {
	questions []models.Question
	skipped   int
	missing   bool
}

// Load (re)reads every source file. Missing files load as empty banks and
// invalid entries are skipped, so a bad file never takes the catalog down.
func (c *Catalog) Load(ctx context.Context) (LoadReport, error) {
	type job struct {
		src      Source
		examType string
		file     string
	}
	var jobs []job
	for _, src := range c.sources {
		jobs = append(jobs, job{src, models.ExamTypeNormal, src.Normal}, job{src, models.ExamTypeGeneral, src.General})
	}
	results := make([]fileResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := c.loadFile(j.src, j.examType, j.file)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return LoadReport{}, err
	}

	var report LoadReport
	var all []models.Question
	for i, r := range results {
		all = append(all, r.questions...)
		report.Skipped += r.skipped
		if r.missing {
			report.Missing++
		}
		if jobs[i].examType == models.ExamTypeGeneral {
			log.Printf("📚 %s: %d normales + %d generales", jobs[i].src.Subject, len(results[i-1].questions), len(r.questions))
		}
	}
	report.Loaded = len(all)
	c.Replace(all)
	log.Printf("🎯 Total preguntas cargadas: %d (omitidas: %d)", report.Loaded, report.Skipped)
	return report, nil
}

func (c *Catalog) loadFile(src Source, examType, name string) (fileResult, error) {
	if name == "" {
		return fileResult{missing: true}, nil
	}
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️  No se pudo cargar %s: archivo no encontrado", name)
			return fileResult{missing: true}, nil
		}
		return fileResult{}, err
	}
	raws, err := DecodeFile(data)
	if err != nil {
		log.Printf("⚠️  No se pudo cargar %s: %v", name, err)
		return fileResult{missing: true}, nil
	}
	var r fileResult
	for i, raw := range raws {
		q, err := Normalize(raw, src, examType, i+1)
		if err != nil {
			r.skipped++
			continue
		}
		r.questions = append(r.questions, q)
	}
	return r, nil
}

// Replace swaps the catalog contents.
func (c *Catalog) Replace(qs []models.Question) {
	byID := make(map[string]int, len(qs))
	for i, q := range qs {
		byID[q.ID] = i
	}
	c.mu.Lock()
	c.questions = qs
	c.byID = byID
	c.mu.Unlock()
}

func (c *Catalog) All() []models.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Question(nil), c.questions...)
}

func (c *Catalog) Get(id string) (models.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Question{}, false
	}
	return c.questions[i], true
}

// Filter returns questions in bank order. subject matches when either name
// contains the other, ignoring case and accents. Empty filters match all.
func (c *Catalog) Filter(subject, examType string) []models.Question {
	want := Fold(subject)
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Question
	for _, q := range c.questions {
		if examType != "" && q.Type != examType {
			continue
		}
		if want != "" {
			have := Fold(q.Subject)
			if !strings.Contains(have, want) && !strings.Contains(want, have) {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

func (c *Catalog) Subjects() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, q := range c.questions {
		if !seen[q.Subject] {
			seen[q.Subject] = true
			out = append(out, q.Subject)
		}
	}
	return out
}

func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.questions)
}

func (c *Catalog) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Statistics{
		Total:     len(c.questions),
		BySubject: make(map[string]TypeCounts),
		ByType:    map[string]int{models.ExamTypeNormal: 0, models.ExamTypeGeneral: 0},
	}
	for _, q := range c.questions {
		st.ByType[q.Type]++
		tc := st.BySubject[q.Subject]
		tc.Total++
		if q.Type == models.ExamTypeGeneral {
			tc.General++
		} else {
			tc.Normal++
		}
		st.BySubject[q.Subject] = tc
	}
	return st
}
