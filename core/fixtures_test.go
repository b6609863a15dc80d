package core

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/metaobject/schema"
)

// =========================================================================
// Contracts
// =========================================================================

type Element struct {
	ContractObject
	Name Property[string]
}

type Entity struct {
	Element
	CreatedOn Property[time.Time]
	Reference Property[string]
}

type Person struct {
	Entity
	FirstName Property[string]
	LastName  Property[string]
	Birthday  Property[time.Time]
}

// Employee has no compiled Data struct and neither has its parent, so its
// Data type chains through the dynamic PersonData.
type Employee struct {
	Person
	Salary Property[float64]
}

type Project struct {
	Entity
	Leader     Ref[*Person]
	Activities List[*Activity]
}

type Activity struct {
	Element
	Hours Property[float64]
}

// Orphan is a Contract type nobody registered.
type Orphan struct {
	ContractObject
}

// =========================================================================
// Data
// =========================================================================

type ElementData struct {
	DataObject
}

func (*ElementData) ContractBindings() []schema.Binding {
	return []schema.Binding{schema.Bind((*Element)(nil), true)}
}

type EntityData struct {
	ElementData
	CreatedOn time.Time
}

func (*EntityData) ContractBindings() []schema.Binding {
	return []schema.Binding{schema.Bind((*Entity)(nil), true)}
}

func (d *EntityData) Reference() string {
	s, _ := d.GetProperty("Reference").(string)
	return s
}

func (d *EntityData) SetReference(reference string) {
	d.SetProperty("Reference", reference)
}

// =========================================================================
// Surrogates
// =========================================================================

type ProjectSurrogate struct {
	SurrogateObject
	Name           string    `path:"Name"`
	LeaderName     string    `path:"Leader.FirstName"`
	LeaderBirthday time.Time `path:"Leader.Birthday"`
	Leader         string    `path:"Leader"`
	Untracked      string
}

func (*ProjectSurrogate) ContractType() reflect.Type {
	return reflect.TypeOf(Project{})
}

// =========================================================================
// Helpers
// =========================================================================

var (
	personType   = reflect.TypeOf((*Person)(nil))
	projectType  = reflect.TypeOf((*Project)(nil))
	employeeType = reflect.TypeOf((*Employee)(nil))

	homerBirthday = time.Date(1956, 5, 12, 0, 0, 0, 0, time.UTC)
)

func fixtureModule() schema.Module {
	return schema.NewModule("fixtures",
		Element{}, Entity{}, Person{}, Employee{}, Project{}, Activity{},
		ElementData{}, EntityData{},
		ProjectSurrogate{},
	)
}

func newTestEngine(t testing.TB, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithModules(fixtureModule()),
	}
	return New(append(base, opts...)...)
}

func dataName(contract any) string {
	return schema.DynamicDataName(schema.FullName(reflect.TypeOf(contract)))
}

func newPerson(t testing.TB, e *Engine, first, last string) *Person {
	t.Helper()
	p, err := Create[*Person](e)
	require.NoError(t, err)
	p.FirstName.Set(first)
	p.LastName.Set(last)
	return p
}

func newProject(t testing.TB, e *Engine, name string, leader *Person) *Project {
	t.Helper()
	p, err := Create[*Project](e)
	require.NoError(t, err)
	p.Name.Set(name)
	if leader != nil {
		p.Leader.Set(leader)
	}
	return p
}
