package core

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/metaobject/notify"
	"github.com/Konsultn-Engineering/metaobject/schema"
)

func TestDataObject_StaticAndDynamicProperties(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")
	p.CreatedOn.Set(homerBirthday)

	d, ok := p.Data().(*EntityData)
	require.True(t, ok, "person data should be backed by EntityData")

	assert.Equal(t, homerBirthday, d.CreatedOn, "CreatedOn is a struct field")
	assert.Equal(t, "Homer", d.GetProperty("FirstName"), "FirstName lives in the cache")
	assert.True(t, d.HasStaticProperty("CreatedOn"))
	assert.False(t, d.HasStaticProperty("FirstName"))
	assert.Nil(t, d.GetProperty("Missing"))

	names := d.PropertyNames()
	assert.Contains(t, names, "CreatedOn")
	assert.Contains(t, names, "FirstName")
	assert.Contains(t, names, "LastName")
}

func TestDataObject_GetDataType(t *testing.T) {
	e := newTestEngine(t)

	p := newPerson(t, e, "Homer", "Simpson")
	assert.Equal(t, dataName(Person{}), BaseOf(p.Data()).GetDataType())

	d, err := e.Builder().GetDataObject(reflect.TypeOf(EntityData{}), false)
	require.NoError(t, err)
	assert.Equal(t, schema.FullName(reflect.TypeOf(EntityData{})), d.GetDataType())
}

func TestDataObject_IDChangesOnlyExplicitly(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.Builder().GetDataObject(reflect.TypeOf(EntityData{}), false)
	require.NoError(t, err)

	d.SetID("a")
	assert.Equal(t, "a", d.ID())

	d.SetID("b")
	assert.Equal(t, "a", d.ID(), "SetID must not replace an existing ID")

	d.SetProperty(IDProperty, "b")
	assert.Equal(t, "b", d.ID())
	assert.Equal(t, "b", d.GetProperty(IDProperty))
}

func TestDataObject_ProxyState(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.Builder().GetContractObject(personType, true)
	require.NoError(t, err)
	d := c.Data()

	assert.True(t, d.GetProxyState("FirstName"), "proxied objects start unloaded")
	assert.True(t, d.GetProxyState(IDProperty), "unsaved proxied ID is unloaded")

	d.SetProperty("FirstName", "Homer")
	assert.False(t, d.GetProxyState("FirstName"), "writing clears the proxy flag")
	assert.False(t, d.GetProxyState("Person.FirstName"), "qualified names use the last segment")

	d.SetProperty(IDProperty, "p-1")
	assert.False(t, d.GetProxyState(IDProperty))

	info := BaseOf(d).GetProxyInformation()
	assert.True(t, info.Default)
	assert.False(t, info.IsProxy("FirstName"))
	assert.True(t, info.IsProxy("LastName"))
}

func TestDataObject_ProxyPropertyLoadsOnce(t *testing.T) {
	e := newTestEngine(t)

	var events []LoadEvent
	sub := e.Loader().Subscribe(func(ev LoadEvent) {
		events = append(events, ev)
		for _, p := range ev.Paths {
			ev.Object.SetProperty(p, "Loaded "+p)
		}
	})
	defer sub.Close()

	c, err := e.Builder().GetContractObject(personType, true)
	require.NoError(t, err)
	p := c.(*Person)

	assert.Equal(t, "Loaded FirstName", p.FirstName.Get())
	assert.Equal(t, "Loaded FirstName", p.FirstName.Get())
	p.FirstName.Set("Homer")
	p.FirstName.Set("Homer")
	assert.Equal(t, "Homer", p.FirstName.Get())

	require.Len(t, events, 1, "a proxy property loads exactly once")
	assert.Equal(t, []string{"FirstName"}, events[0].Paths)
	assert.Equal(t, dataName(Person{}), events[0].DataType)
	assert.Equal(t, "people", events[0].Collection)
	assert.True(t, events[0].Proxies.Default)
}

func TestDataObject_ProxyClearedWithoutSubscriber(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.Builder().GetContractObject(personType, true)
	require.NoError(t, err)
	p := c.(*Person)

	assert.Equal(t, "", p.FirstName.Get())
	assert.False(t, p.GetProxyState("FirstName"))
}

func TestDataObject_PropertyNotifications(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")

	var changing []notify.PropertyChanging
	var senders []any
	sub1 := notify.Subscribe(e.Notifier(), func(_ any, ev notify.PropertyChanging) {
		changing = append(changing, ev)
	})
	defer sub1.Close()
	sub2 := notify.Subscribe(e.Notifier(), func(sender any, ev notify.PropertyChanged) {
		senders = append(senders, sender)
	})
	defer sub2.Close()

	p.FirstName.Set("Bart")

	require.Len(t, changing, 2, "sent for the data object and its contract")
	assert.Equal(t, "FirstName", changing[0].Name)
	assert.Equal(t, "Homer", changing[0].OldValue)
	assert.Equal(t, "Bart", changing[0].NewValue)

	require.Len(t, senders, 2)
	assert.Same(t, BaseOf(p.Data()), BaseOf(senders[0].(Data)))
	assert.Same(t, p, senders[1])

	changing = nil
	p.Data().SetProperty(IDProperty, "")
	assert.Empty(t, changing, "an unchanged ID sends nothing")
}

func TestDataObject_AsContractReusesCachedObjects(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")
	d := p.Data()

	assert.Same(t, p, As[*Person](d))
	assert.Same(t, p, As[*Person](d), "same data and type give the same contract")

	entity := As[*Entity](d)
	require.NotNil(t, entity)
	assert.Same(t, &p.Entity, entity, "an ancestor contract is a view of the cached one")
	assert.Same(t, entity, As[*Entity](d))
	assert.Equal(t, "Homer", PropertyOf[string](entity, "FirstName"))

	assert.Len(t, BaseOf(d).ContractObjects(), 1)
}

func TestDataObject_AsContractBuildsFromTypeInfo(t *testing.T) {
	e := newTestEngine(t)

	d, err := e.Builder().GetDataObjectByName(dataName(Person{}), false)
	require.NoError(t, err)
	d.SetProperty("FirstName", "Homer")

	p := As[*Person](d)
	require.NotNil(t, p)
	assert.Equal(t, "Homer", p.FirstName.Get())
	assert.Same(t, p, As[*Person](d))

	c := BaseOf(d).AsContract(contractInterface)
	assert.Same(t, p, c, "interface targets accept any cached contract")
}

func TestDataObject_IsHoldingContractObjectTypes(t *testing.T) {
	e := newTestEngine(t)
	p := newPerson(t, e, "Homer", "Simpson")
	base := BaseOf(p.Data())

	assert.True(t, base.IsHoldingContractObjectTypes(personType))
	assert.True(t, base.IsHoldingContractObjectTypes(projectType, reflect.TypeOf((*Entity)(nil))))
	assert.False(t, base.IsHoldingContractObjectTypes(projectType))
}

func TestDataObject_ContractValuesStoredAsData(t *testing.T) {
	e := newTestEngine(t)
	homer := newPerson(t, e, "Homer", "Simpson")
	project := newProject(t, e, "Apollo", homer)

	stored := project.Data().GetProperty("Leader")
	require.Implements(t, (*Data)(nil), stored)
	assert.Same(t, BaseOf(homer.Data()), BaseOf(stored.(Data)))

	assert.Same(t, homer, project.Leader.Get())
	assert.Same(t, homer, project.GetProperty("Leader"))

	project.Leader.Set(nil)
	assert.Nil(t, project.Leader.Get())
}
