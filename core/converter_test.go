package core

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_ContractDataRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")

	d := ConvertTo[Data](e, p)
	require.NotNil(t, d)
	assert.Same(t, BaseOf(p.Data()), BaseOf(d))

	assert.Same(t, p, ConvertTo[*Person](e, d))
	assert.Same(t, p, ConvertTo[Contract](e, d))
	assert.Same(t, &p.Entity, ConvertTo[*Entity](e, p))

	typed := ConvertTo[*EntityData](e, p)
	assert.Same(t, p.Data(), typed)
}

func TestConverter_DataFromUnrelatedSource(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")
	homer.SetID("h-1")

	// A Data type the contract is not backed by gets a proxy carrying the ID.
	d := ConvertTo[*ElementData](e, homer)
	require.NotNil(t, d)
	assert.NotSame(t, BaseOf(homer.Data()), BaseOf(d))
	assert.Equal(t, "h-1", d.ID())
	assert.True(t, d.GetProxyState("Name"))
	assert.False(t, d.GetProxyState(IDProperty))
}

func TestConverter_DynamicSurrogate(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")
	project := newProject(t, e, "Apollo", homer)
	project.SetID("x-1")

	s := ConvertTo[*SurrogateObject](e, project, "Name", "Leader.FirstName", "Leader.Nickname")
	require.NotNil(t, s)

	assert.Equal(t, "x-1", s.ID())
	assert.Equal(t, "Apollo", s.GetProperty("Name"))
	assert.Equal(t, "Homer", s.GetProperty("Leader.FirstName"))
	assert.Nil(t, s.GetProperty("Leader.Nickname"))
	assert.Len(t, s.Properties(), 3)

	viaInterface := ConvertTo[Surrogate](e, project, "Name")
	require.NotNil(t, viaInterface)
	assert.Equal(t, "Apollo", viaInterface.GetProperty("Name"))
}

func TestConverter_TypedSurrogate(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")
	homer.SetID("h-1")
	homer.Birthday.Set(homerBirthday)
	project := newProject(t, e, "Apollo", homer)

	s := ConvertTo[*ProjectSurrogate](e, project)
	require.NotNil(t, s)

	assert.Equal(t, "Apollo", s.Name)
	assert.Equal(t, "Homer", s.LeaderName)
	assert.Equal(t, homerBirthday, s.LeaderBirthday)
	assert.Equal(t, "github.com/Konsultn-Engineering/metaobject/core.Person(h-1)", s.Leader,
		"objects are copied in string form")
	assert.Empty(t, s.Untracked)
	assert.Equal(t, "Apollo", s.GetProperty("Name"))
}

func TestConverter_TypedSurrogateFromData(t *testing.T) {
	e := newTestEngine(t)
	project := newProject(t, e, "Apollo", nil)

	s := ConvertTo[*ProjectSurrogate](e, project.Data())
	require.NotNil(t, s)
	assert.Equal(t, "Apollo", s.Name)
	assert.Empty(t, s.LeaderName)
	assert.True(t, s.LeaderBirthday.IsZero())
}

func TestConverter_SurrogateToContract(t *testing.T) {
	e := newTestEngine(t)

	s := &ProjectSurrogate{Name: "Apollo"}
	s.SetID("x-1")

	p := ConvertTo[*Project](e, s)
	require.NotNil(t, p)
	assert.Equal(t, "x-1", p.ID())
	assert.True(t, p.GetProxyState("Name"), "the contract is a proxy to be loaded")
	assert.False(t, p.GetProxyState(IDProperty))

	c := ConvertTo[Contract](e, s)
	require.IsType(t, &Project{}, c, "interface targets use the surrogate's contract type")
	assert.Equal(t, "x-1", c.ID())

	dyn := NewSurrogate()
	dyn.SetID("x-2")
	assert.Nil(t, ConvertTo[Contract](e, dyn), "an untyped surrogate names no contract")
	assert.Equal(t, "x-2", ConvertTo[*Project](e, dyn).ID())
}

func TestConverter_SurrogateToData(t *testing.T) {
	e := newTestEngine(t)

	s := &ProjectSurrogate{}
	s.SetID("x-1")

	d := ConvertTo[Data](e, s)
	require.NotNil(t, d)
	assert.Equal(t, "x-1", d.ID())
	assert.Equal(t, dataName(Project{}), d.GetDataType())
	assert.True(t, d.GetProxyState("Name"))
}

func TestConverter_UnsupportedConversions(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")

	tests := []struct {
		name   string
		target reflect.Type
		source any
	}{
		{"nil source", personType, nil},
		{"nil target", nil, p},
		{"plain target", reflect.TypeOf(&time.Time{}), p},
		{"scalar source", personType, 42},
		{"value target", reflect.TypeOf(Person{}), p},
		{"foreign interface", reflect.TypeOf((*fmt.Stringer)(nil)).Elem(), p.Data()},
		{"object interface", reflect.TypeOf((*Object)(nil)).Elem(), p.Data()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, e.Converter().ConvertTo(tt.target, tt.source, nil))
		})
	}

	assert.Nil(t, ConvertTo[*Person](e, 42))
	assert.Nil(t, ConvertTo[fmt.Stringer](e, p.Data()))
	assert.Same(t, p, ConvertTo[Contract](e, p.Data()), "the contract interface still converts")
}
