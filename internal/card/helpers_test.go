package card

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cardfile/internal/testutil"
	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/persist"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// shelf resolves references from a fixed set of packages.
type shelf map[string]schema.Named

func (s shelf) Resolve(typeName, name string) (schema.Object, error) {
	obj, ok := s[typeName+"/"+name]
	if !ok {
		return nil, &core.ReferenceNotFoundError{Type: typeName, Name: name}
	}
	return obj, nil
}

func readDoc(t *testing.T, src string, obj schema.Object, refs persist.RefResolver) *persist.Result {
	t.Helper()
	r := persist.NewReader(NewRegistry(), persist.WithRefs(refs), persist.WithLogger(testutil.NewTestLogger(t)))
	res, err := r.ReadBytes([]byte(src), obj)
	require.NoError(t, err)
	return res
}

func writeDoc(t *testing.T, obj schema.Object) string {
	t.Helper()
	out, err := persist.NewWriter(NewRegistry(), persist.WithVersion(CurrentVersion)).Marshal(obj)
	require.NoError(t, err)
	return string(out)
}

// assertStable checks that writing, reading and writing again is byte-identical.
func assertStable(t *testing.T, obj schema.Object, fresh func() schema.Object, refs persist.RefResolver) string {
	t.Helper()
	first := writeDoc(t, obj)
	back := fresh()
	res := readDoc(t, first, back, refs)
	require.Empty(t, res.Warnings)
	require.Equal(t, first, writeDoc(t, back))
	return first
}

func persistReader() *persist.Reader {
	return persist.NewReader(NewRegistry())
}

func persistReaderWith(refs persist.RefResolver) *persist.Reader {
	return persist.NewReader(NewRegistry(), persist.WithRefs(refs))
}
