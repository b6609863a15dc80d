package schema

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
)

type dataRoot struct {
	dynamicType string
}

func (d *dataRoot) DynamicType() string { return d.dynamicType }

type contractRoot struct{}

type surrogateRoot struct{}

type prop[T any] struct{}

func (prop[T]) PropertyKind() PropertyKind { return ScalarProperty }

func (prop[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

type ref[T any] struct{}

func (ref[T]) PropertyKind() PropertyKind { return ReferenceProperty }

func (ref[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

type list[T any] struct{}

func (list[T]) PropertyKind() PropertyKind { return ListProperty }

func (list[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

type Element struct {
	contractRoot
	Name prop[string]
}

type Entity struct {
	Element
	CreatedOn prop[string]
}

type Person struct {
	Entity
	FirstName prop[string]
}

type Employee struct {
	Person
	Salary prop[float64]
}

type Project struct {
	Entity
	Leader ref[*Person]
	Tasks  list[*Task]
}

type Task struct {
	Element
}

type ElementData struct {
	dataRoot
}

func (*ElementData) ContractBindings() []Binding {
	return []Binding{Bind((*Element)(nil), true)}
}

type EntityData struct {
	ElementData
	CreatedOn string
}

func (*EntityData) ContractBindings() []Binding {
	return []Binding{Bind((*Entity)(nil), true)}
}

// ArchiveData is an alternative, non-default representation of Entity.
type ArchiveData struct {
	EntityData
	ArchivedOn string
}

func (*ArchiveData) ContractBindings() []Binding {
	return []Binding{Bind((*Entity)(nil), false)}
}

type ProjectView struct {
	surrogateRoot
	Name   string `path:"Name"`
	Leader string `path:"Leader.FirstName"`
}

var (
	dataRootType      = reflect.TypeOf(dataRoot{})
	contractRootType  = reflect.TypeOf(contractRoot{})
	surrogateRootType = reflect.TypeOf(surrogateRoot{})
)

func fixtureModule() Module {
	return NewModule("fixtures",
		Element{}, Entity{}, Person{}, Employee{}, Project{}, Task{},
		ElementData{}, EntityData{}, ArchiveData{},
		ProjectView{},
	)
}

func newTestLocator(t testing.TB, options ...Option) *Locator {
	t.Helper()
	base := []Option{
		WithRoots(dataRootType, contractRootType, surrogateRootType),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithModules(fixtureModule()),
	}
	return NewLocator(append(base, options...)...)
}

func fullNameOf(v any) string {
	return FullName(reflect.TypeOf(v))
}
