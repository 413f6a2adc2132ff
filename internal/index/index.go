// Package index stores the declarations of parsed units in SQLite so tools can
// look names up without re-parsing.
package index

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/naming"
)

// ========== Models ==========

// Run is one indexing pass over a set of files
type Run struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Files       int       `json:"files"`
	Diagnostics int       `json:"diagnostics"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BeforeCreate is a GORM hook that assigns the run identifier
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Unit is one parsed file of a run
type Unit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RunID       string    `gorm:"index" json:"runId"`
	Path        string    `gorm:"index" json:"path"`
	Module      string    `json:"module"`
	Diagnostics int       `json:"diagnostics"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Declaration is one top-level name of a unit
type Declaration struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UnitID    uint   `gorm:"index" json:"unitId"`
	RunID     string `gorm:"index" json:"runId"`
	Kind      string `gorm:"index" json:"kind"`
	Name      string `gorm:"index" json:"name"`
	Signature string `json:"signature"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Private   bool   `json:"private"`
}

// Problem is a stored diagnostic
type Problem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UnitID  uint   `gorm:"index" json:"unitId"`
	RunID   string `gorm:"index" json:"runId"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// ========== Store ==========

// Store wraps the index database
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens (creating if needed) the index at path. ":memory:" gives a private
// in-memory index.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Run{}, &Unit{}, &Declaration{}, &Problem{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate index: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log.With(slog.String("component", "index"))}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BeginRun starts a new indexing pass.
func (s *Store) BeginRun() (*Run, error) {
	run := &Run{}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	s.log.Debug("run started", slog.String("run", run.ID))
	return run, nil
}

// AddUnit stores the declarations and diagnostics of one parsed file.
func (s *Store) AddUnit(run *Run, path string, prog *ast.Program, diags []*diag.Diagnostic) (*Unit, error) {
	unit := &Unit{RunID: run.ID, Path: path, Module: prog.Module.Name, Diagnostics: len(diags)}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(unit).Error; err != nil {
			return err
		}
		decls := Declarations(prog)
		for i := range decls {
			decls[i].UnitID = unit.ID
			decls[i].RunID = run.ID
		}
		if len(decls) > 0 {
			if err := tx.Create(&decls).Error; err != nil {
				return err
			}
		}
		if len(diags) > 0 {
			problems := make([]Problem, len(diags))
			for i, d := range diags {
				problems[i] = Problem{
					UnitID:  unit.ID,
					RunID:   run.ID,
					Kind:    d.Kind.String(),
					Message: d.Message,
					Line:    d.Span.Line,
					Column:  d.Span.Column,
				}
			}
			if err := tx.Create(&problems).Error; err != nil {
				return err
			}
		}
		return tx.Model(run).Updates(map[string]any{
			"files":       gorm.Expr("files + ?", 1),
			"diagnostics": gorm.Expr("diagnostics + ?", len(diags)),
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}
	run.Files++
	run.Diagnostics += len(diags)
	s.log.Debug("unit indexed", slog.String("path", path), slog.Int("diagnostics", len(diags)))
	return unit, nil
}

// LatestRun returns the most recent run, or nil when the index is empty.
func (s *Store) LatestRun() (*Run, error) {
	var run Run
	err := s.db.Order("created_at desc").Order("rowid desc").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Find returns the declarations named name in the given run, in declaration order.
// The name may be qualified with its module: math::Vec.
func (s *Store) Find(runID, name string) ([]Declaration, error) {
	module, bare := naming.Split(name)
	q := s.db.Model(&Declaration{}).Select("declarations.*").Where("declarations.run_id = ? AND declarations.name = ?", runID, bare)
	if module != "" {
		q = q.Joins("JOIN units ON units.id = declarations.unit_id").Where("units.module = ?", module)
	}
	var out []Declaration
	if err := q.Order("declarations.id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Units returns the files of a run.
func (s *Store) Units(runID string) ([]Unit, error) {
	var out []Unit
	if err := s.db.Where("run_id = ?", runID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Problems returns the stored diagnostics of a run.
func (s *Store) Problems(runID string) ([]Problem, error) {
	var out []Problem
	if err := s.db.Where("run_id = ?", runID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ========== Extraction ==========

// Declarations lists the top-level names of prog in a stable order.
func Declarations(prog *ast.Program) []Declaration {
	var out []Declaration
	add := func(kind, name, sig string, node ast.Node, private bool) {
		sp := node.Span()
		out = append(out, Declaration{
			Kind:      kind,
			Name:      name,
			Signature: sig,
			Line:      sp.Line,
			Column:    sp.Column,
			Private:   private,
		})
	}
	for _, a := range prog.Aliases {
		add(a.Kind.String(), a.Name, a.Type.String(), a, a.Private)
	}
	for _, e := range prog.Enums {
		add("enum", e.Name, e.Base.String(), e, e.Private)
	}
	for _, s := range prog.Structures {
		add(s.TokenLiteral(), s.Name, s.Parent, s, s.Private)
		for _, m := range s.Methods {
			add("method", naming.Method(s.Name, m.Name), m.Signature(), m, m.Private)
		}
	}
	for _, g := range prog.Globals {
		for _, n := range g.Names {
			add(g.TokenLiteral(), n.Name, g.Type.String(), g, g.Private)
		}
	}
	for _, fn := range prog.Functions {
		add("function", fn.Name, fn.Signature(), fn, fn.Private)
	}
	for _, fn := range prog.Generics {
		add("generic", fn.Name, fn.Signature(), fn, fn.Private)
	}
	return out
}
