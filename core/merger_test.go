package core

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerger_MergeDataObject(t *testing.T) {
	tests := []struct {
		name      string
		paths     []string
		baseID    string
		mergeID   string
		wantFirst string
		wantLast  string
		wantID    string
	}{
		{
			name:      "path filter",
			paths:     []string{"FirstName"},
			wantFirst: "Bart",
			wantLast:  "Simpson",
		},
		{
			name:      "everything",
			wantFirst: "Bart",
			wantLast:  "Flanders",
		},
		{
			name:      "empty id keeps base id",
			baseID:    "b-1",
			wantFirst: "Bart",
			wantLast:  "Flanders",
			wantID:    "b-1",
		},
		{
			name:      "id is merged",
			baseID:    "b-1",
			mergeID:   "m-1",
			wantFirst: "Bart",
			wantLast:  "Flanders",
			wantID:    "m-1",
		},
		{
			name:      "id outside the paths",
			paths:     []string{"LastName"},
			baseID:    "b-1",
			mergeID:   "m-1",
			wantFirst: "Homer",
			wantLast:  "Flanders",
			wantID:    "b-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			base := newPerson(t, e, "Homer", "Simpson")
			merging := newPerson(t, e, "Bart", "Flanders")
			base.SetID(tt.baseID)
			merging.SetID(tt.mergeID)

			e.Merger().MergeDataObject(base.Data(), merging.Data(), tt.paths, true, nil)

			assert.Equal(t, tt.wantFirst, base.FirstName.Get())
			assert.Equal(t, tt.wantLast, base.LastName.Get())
			assert.Equal(t, tt.wantID, base.ID())

			assert.Equal(t, "Bart", merging.FirstName.Get(), "merging object is left alone")
			assert.Equal(t, "Flanders", merging.LastName.Get())
		})
	}
}

func TestMerger_SkipsProxyProperties(t *testing.T) {
	e := newTestEngine(t)
	base := newPerson(t, e, "Homer", "Simpson")
	base.CreatedOn.Set(homerBirthday)

	c, err := e.Builder().GetContractObject(personType, true)
	require.NoError(t, err)
	merging := c.(*Person)
	merging.Data().SetProperty("FirstName", "Bart")

	e.Merger().MergeDataObject(base.Data(), merging.Data(), nil, true, nil)

	assert.Equal(t, "Bart", base.FirstName.Get())
	assert.Equal(t, "Simpson", base.LastName.Get(), "unloaded properties are not merged")
	assert.Equal(t, homerBirthday, base.CreatedOn.Get())
	assert.True(t, merging.GetProxyState("LastName"), "merging does not load")
}

func TestMerger_NilArguments(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")

	assert.NotPanics(t, func() {
		e.Merger().MergeDataObject(nil, p.Data(), nil, true, nil)
		e.Merger().MergeDataObject(p.Data(), nil, nil, true, nil)
	})
	assert.Equal(t, "Homer", p.FirstName.Get())
}

func TestMerger_DynamicType(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")

	base, err := e.Builder().GetDataObject(reflect.TypeOf(EntityData{}), false)
	require.NoError(t, err)
	require.Empty(t, base.DynamicType())

	e.Merger().MergeDataObject(base, homer.Data(), nil, true, nil)

	assert.Equal(t, dataName(Person{}), base.DynamicType())
	assert.Equal(t, "Homer", As[*Person](base).FirstName.Get())
}

func TestCloner_CloneDataObject(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")
	homer.CreatedOn.Set(homerBirthday)

	clone := e.Cloner().CloneDataObject(homer.Data(), nil, true, nil)
	require.NotNil(t, clone)

	assert.NotSame(t, BaseOf(homer.Data()), BaseOf(clone))
	assert.Equal(t, homer.Data().GetDataType(), clone.GetDataType())
	assert.Equal(t, "Homer", clone.GetProperty("FirstName"))
	assert.Equal(t, "Simpson", clone.GetProperty("LastName"))
	assert.Equal(t, homerBirthday, clone.(*EntityData).CreatedOn)
	assert.False(t, BaseOf(clone).DefaultProxyState())

	clone.SetProperty("FirstName", "Bart")
	assert.Equal(t, "Homer", homer.FirstName.Get(), "clone is independent")
}

func TestCloner_Paths(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")

	clone := Clone(e, homer.Data().(*EntityData), "LastName")
	require.NotNil(t, clone)
	assert.Nil(t, clone.GetProperty("FirstName"))
	assert.Equal(t, "Simpson", clone.GetProperty("LastName"))

	viaObject := BaseOf(homer.Data()).Clone([]string{"FirstName"}, false)
	require.NotNil(t, viaObject)
	assert.Equal(t, "Homer", viaObject.GetProperty("FirstName"))
	assert.Nil(t, viaObject.GetProperty("LastName"))
}

func TestCloner_References(t *testing.T) {
	t.Run("saved reference becomes a stub", func(t *testing.T) {
		e := newTestEngine(t)
		homer := newPerson(t, e, "Homer", "Simpson")
		homer.SetID("h-1")
		project := newProject(t, e, "Apollo", homer)

		clone := e.Cloner().CloneDataObject(project.Data(), nil, true, nil)
		require.NotNil(t, clone)

		leader, ok := clone.GetProperty("Leader").(Data)
		require.True(t, ok)
		assert.NotSame(t, BaseOf(homer.Data()), BaseOf(leader))
		assert.Equal(t, "h-1", leader.ID())
		assert.Equal(t, dataName(Person{}), leader.GetDataType())
		assert.True(t, leader.GetProxyState("FirstName"), "stubs are proxies")
		assert.Nil(t, leader.GetProperty("FirstName"))

		cloned := As[*Project](clone)
		require.NotNil(t, cloned)
		require.NotNil(t, cloned.Leader.Get())
		assert.Equal(t, "h-1", cloned.Leader.Get().ID())
	})

	t.Run("stubs are not proxies on request", func(t *testing.T) {
		e := newTestEngine(t)
		homer := newPerson(t, e, "Homer", "Simpson")
		homer.SetID("h-1")
		project := newProject(t, e, "Apollo", homer)

		clone := e.Cloner().CloneDataObject(project.Data(), nil, false, nil)
		leader := clone.GetProperty("Leader").(Data)
		assert.False(t, leader.GetProxyState("FirstName"))
	})

	t.Run("saved reference is resolved", func(t *testing.T) {
		e := newTestEngine(t)
		homer := newPerson(t, e, "Homer", "Simpson")
		homer.SetID("h-1")
		project := newProject(t, e, "Apollo", homer)

		known := newPerson(t, e, "Homer J.", "Simpson")
		var asked []string
		resolve := func(typeName, id string) Data {
			asked = append(asked, typeName+"/"+id)
			return known.Data()
		}

		clone := e.Cloner().CloneDataObject(project.Data(), nil, true, resolve)
		leader := clone.GetProperty("Leader").(Data)

		assert.Same(t, BaseOf(known.Data()), BaseOf(leader))
		assert.Equal(t, []string{dataName(Person{}) + "/h-1"}, asked)
	})

	t.Run("unsaved reference is copied", func(t *testing.T) {
		e := newTestEngine(t)
		homer := newPerson(t, e, "Homer", "Simpson")
		project := newProject(t, e, "Apollo", homer)

		clone := e.Cloner().CloneDataObject(project.Data(), nil, true, nil)
		leader := clone.GetProperty("Leader").(Data)

		assert.NotSame(t, BaseOf(homer.Data()), BaseOf(leader))
		assert.Equal(t, "Homer", leader.GetProperty("FirstName"))
		assert.Equal(t, dataName(Person{}), leader.GetDataType())
	})
}

func TestCloner_CyclesShareDestination(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")
	project := newProject(t, e, "Apollo", homer)
	homer.SetProperty("Project", project)

	clone := e.Cloner().CloneDataObject(project.Data(), nil, true, nil)
	require.NotNil(t, clone)

	leader := clone.GetProperty("Leader").(Data)
	back, ok := leader.GetProperty("Project").(Data)
	require.True(t, ok)
	assert.Same(t, BaseOf(clone), BaseOf(back), "the cycle closes on the clone")
}

func TestCloner_Lists(t *testing.T) {
	e := newTestEngine(t)
	project := newProject(t, e, "Apollo", nil)

	design, err := Create[*Activity](e)
	require.NoError(t, err)
	design.Name.Set("Design")
	project.Activities.Get().Add(design, design)

	list := project.Activities.Get().DataList()
	list.SetQuery("Hours > 0")
	list.Include("Owner")
	list.Add(nil)

	clone := e.Cloner().CloneDataObject(project.Data(), nil, true, nil)
	copied, ok := clone.GetProperty("Activities").(*DataList)
	require.True(t, ok)

	assert.NotSame(t, list, copied)
	assert.Equal(t, "Hours > 0", copied.Query())
	assert.Equal(t, list.DynamicType(), copied.DynamicType())
	assert.Equal(t, []string{"Owner"}, copied.Includes())
	require.Equal(t, 3, copied.Len(), "nil elements keep their position")
	assert.NotSame(t, BaseOf(design.Data()), BaseOf(copied.At(0)))
	assert.Same(t, BaseOf(copied.At(0)), BaseOf(copied.At(1)), "a repeated element is copied once")
	assert.Nil(t, copied.At(2))
	assert.Equal(t, "Design", copied.At(0).GetProperty("Name"))
}
