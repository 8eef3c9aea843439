package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtendSchemaRootAliasResolvedAway(t *testing.T) {
	s, err := ExtendSchema(nil, map[string]TypeDef{
		"Root":     {Expr: "RootImpl"},
		"RootImpl": {Expr: "Array<Map<Optional<Vector3>>>"},
	}, nil, nil)
	require.NoError(t, err)

	root := s["Root"]
	require.Equal(t, KindArray, root.Kind)
	require.Same(t, s["RootImpl"], root)

	m := s[root.Children[0]]
	require.Equal(t, KindMap, m.Kind)

	opt := s[m.Children[0]]
	require.Equal(t, KindOptional, opt.Kind)
	require.Equal(t, []string{"Vector3"}, opt.Children)
	require.Equal(t, KindPrimitive, s["Vector3"].Kind)
}

func TestExtendSchemaNamedTupleFieldsPreserveOrder(t *testing.T) {
	s, err := ExtendSchema(nil, map[string]TypeDef{
		"Pose": {Fields: []NamedField{
			{Key: "position", Expr: "Vector3"},
			{Key: "rotation", Expr: "Vector3"},
			{Key: "size", Expr: "Vector3"},
		}},
	}, nil, nil)
	require.NoError(t, err)

	pose := s["Pose"]
	require.Equal(t, KindNamedTuple, pose.Kind)
	require.Equal(t, []string{"position", "rotation", "size"}, pose.Keys)
	require.Equal(t, []string{"Pose.position", "Pose.rotation", "Pose.size"}, pose.Children)
	require.Equal(t, 1, pose.Indexes["rotation"])
}

func TestExtendSchemaTupleFieldsIndexed(t *testing.T) {
	s, err := ExtendSchema(nil, map[string]TypeDef{
		"TrackedEntitySource": {Tuple: []string{
			"Uint8",
			"OneOf<String,Int32>",
			"Optional<String>",
		}},
	}, nil, nil)
	require.NoError(t, err)

	tup := s["TrackedEntitySource"]
	require.Equal(t, KindTuple, tup.Kind)
	require.Equal(t, []string{
		"TrackedEntitySource[0]", "TrackedEntitySource[1]", "TrackedEntitySource[2]",
	}, tup.Children)
	require.Equal(t, KindOneOf, s["TrackedEntitySource[1]"].Kind)
}

func TestExtendSchemaRefMarksTarget(t *testing.T) {
	s, err := ExtendSchema(nil, map[string]TypeDef{
		"TrackedEntity":    {Fields: []NamedField{{Key: "id", Expr: "Int32"}}},
		"TrackedEntityRef": {Expr: "Ref<TrackedEntity>"},
	}, nil, nil)
	require.NoError(t, err)
	require.True(t, s["TrackedEntity"].Ref)
}

func TestExtendSchemaMissingChildIsError(t *testing.T) {
	_, err := ExtendSchema(nil, map[string]TypeDef{
		"Foo": {Expr: "Array<DoesNotExist>"},
	}, nil, nil)
	require.Error(t, err)
}

func TestExtendSchemaOptionalOfOptionalIsError(t *testing.T) {
	_, err := ExtendSchema(nil, map[string]TypeDef{
		"Foo": {Expr: "Optional<Optional<Vector3>>"},
	}, nil, nil)
	require.Error(t, err)
}

func TestExtendSchemaOneOfNeedsTwoDistinctChildrenWithChecks(t *testing.T) {
	_, err := ExtendSchema(nil, map[string]TypeDef{
		"Foo": {Expr: "OneOf<Int32>"},
	}, nil, nil)
	require.Error(t, err)

	_, err = ExtendSchema(nil, map[string]TypeDef{
		"Foo": {Expr: "OneOf<Int32,Int32>"},
	}, nil, nil)
	require.Error(t, err)
}

func TestExtendSchemaRefOnInvalidBaseIsError(t *testing.T) {
	_, err := ExtendSchema(nil, map[string]TypeDef{
		"Foo": {Expr: "Ref<Int32>"},
	}, nil, nil)
	require.Error(t, err)
}

func TestExtendSchemaMalformedLinkIsError(t *testing.T) {
	_, err := ExtendSchema(nil, map[string]TypeDef{
		"Foo": {Expr: "Link<NoSlash>"},
	}, nil, nil)
	require.Error(t, err)
}

func TestExtendSchemaCircularAliasIsError(t *testing.T) {
	_, err := ExtendSchema(nil, map[string]TypeDef{
		"A": {Expr: "B"},
		"B": {Expr: "A"},
	}, nil, nil)
	require.Error(t, err)
}
