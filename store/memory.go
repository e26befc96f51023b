package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hauswerk/vorlage/document"
	"github.com/hauswerk/vorlage/recovery"
)

// Memory is a mutex-guarded in-memory Store. Template names are unique,
// matching the constraint the database schema enforces.
type Memory struct {
	mu        sync.Mutex
	templates map[string]Template
	nextID    int

	// now is overridable in tests.
	now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		templates: make(map[string]Template),
		nextID:    1,
		now:       time.Now,
	}
}

func (m *Memory) Create(ctx context.Context, name string, content document.Node) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(name, "") {
		return Template{}, recovery.FromBackendCode(recovery.BackendCodeUniqueViolation, map[string]interface{}{
			"name": name,
		})
	}

	now := m.now()
	tpl := Template{
		ID:        fmt.Sprintf("tpl-%d", m.nextID),
		Name:      name,
		Content:   content.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextID++
	m.templates[tpl.ID] = tpl
	return tpl.clone(), nil
}

func (m *Memory) Get(ctx context.Context, id string) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tpl, ok := m.templates[id]
	if !ok {
		return Template{}, recovery.FromBackendCode(recovery.BackendCodeNotFound, map[string]interface{}{
			"templateId": id,
		})
	}
	return tpl.clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	templates := make([]Template, 0, len(m.templates))
	for _, tpl := range m.templates {
		templates = append(templates, tpl.clone())
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (m *Memory) Update(ctx context.Context, id string, name string, content document.Node) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tpl, ok := m.templates[id]
	if !ok {
		return Template{}, recovery.FromBackendCode(recovery.BackendCodeNotFound, map[string]interface{}{
			"templateId": id,
		})
	}
	if m.nameTaken(name, id) {
		return Template{}, recovery.FromBackendCode(recovery.BackendCodeUniqueViolation, map[string]interface{}{
			"name": name,
		})
	}

	tpl.Name = name
	tpl.Content = content.Clone()
	tpl.UpdatedAt = m.now()
	m.templates[id] = tpl
	return tpl.clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return recovery.FromBackendCode(recovery.BackendCodeNotFound, map[string]interface{}{
			"templateId": id,
		})
	}
	delete(m.templates, id)
	return nil
}

// nameTaken reports whether another template already uses the name. The
// comparison is case-insensitive, like the database collation.
func (m *Memory) nameTaken(name string, excludeID string) bool {
	for id, tpl := range m.templates {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(tpl.Name, name) {
			return true
		}
	}
	return false
}

func (t Template) clone() Template {
	cloned := t
	cloned.Content = t.Content.Clone()
	return cloned
}
