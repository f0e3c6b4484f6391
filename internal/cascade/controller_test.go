package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource maps (level, parent) to options.
type mapSource struct {
	children map[Level]map[uint][]Option
	err      error
}

func (m *mapSource) Children(_ context.Context, level Level, parentID uint) ([]Option, error) {
	if m.err != nil {
		return nil, m.err
	}
	if level == Province {
		parentID = 0
	}
	return m.children[level][parentID], nil
}

func testSource() *mapSource {
	return &mapSource{children: map[Level]map[uint][]Option{
		Province: {0: {{ID: 32, Name: "Jawa Barat"}, {ID: 35, Name: "Jawa Timur"}}},
		Regency: {
			32: {{ID: 3273, Name: "Kota Bandung"}},
			35: {{ID: 3522, Name: "Bojonegoro"}, {ID: 3517, Name: "Jombang"}},
		},
		District: {
			3273: {{ID: 327301, Name: "Sukasari"}},
			3522: {{ID: 352201, Name: "Margomulyo"}},
		},
		Village: {
			327301: {{ID: 3273011001, Name: "Gegerkalong"}},
			352201: {{ID: 3522012001, Name: "Kalangan"}},
		},
	}}
}

func TestController_FullChain(t *testing.T) {
	ctx := context.Background()
	c, err := NewController(ctx, testSource())
	require.NoError(t, err)
	assert.Len(t, c.Options(Province), 2)

	require.NoError(t, c.Select(ctx, Province, 35))
	assert.Len(t, c.Options(Regency), 2)
	require.NoError(t, c.Select(ctx, Regency, 3522))
	require.NoError(t, c.Select(ctx, District, 352201))
	require.NoError(t, c.Select(ctx, Village, 3522012001))

	sel := c.Selection()
	assert.True(t, sel.Complete())
}

func TestController_ParentChangeResetsChildren(t *testing.T) {
	ctx := context.Background()
	c, err := NewController(ctx, testSource())
	require.NoError(t, err)

	require.NoError(t, c.Select(ctx, Province, 35))
	require.NoError(t, c.Select(ctx, Regency, 3522))
	require.NoError(t, c.Select(ctx, District, 352201))

	require.NoError(t, c.Select(ctx, Province, 32))

	sel := c.Selection()
	_, ok := sel.Get(Regency)
	assert.False(t, ok)
	_, ok = sel.Get(District)
	assert.False(t, ok)
	assert.Nil(t, c.Options(District))
	assert.Equal(t, []Option{{ID: 3273, Name: "Kota Bandung"}}, c.Options(Regency))

	// The stale regency is no longer an option.
	var notAnOption *NotAnOptionError
	err = c.Select(ctx, Regency, 3522)
	require.ErrorAs(t, err, &notAnOption)
	assert.Equal(t, Regency, notAnOption.Level)
}

func TestController_RejectsSkippingLevels(t *testing.T) {
	ctx := context.Background()
	c, err := NewController(ctx, testSource())
	require.NoError(t, err)

	err = c.Select(ctx, District, 352201)
	var notAnOption *NotAnOptionError
	require.ErrorAs(t, err, &notAnOption)
	assert.Equal(t, District, notAnOption.Level)
}

func TestController_UnknownParentYieldsNoOptions(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	src.children[Province][0] = append(src.children[Province][0], Option{ID: 99, Name: "Empty"})
	c, err := NewController(ctx, src)
	require.NoError(t, err)

	require.NoError(t, c.Select(ctx, Province, 99))
	assert.Empty(t, c.Options(Regency))
}

func TestController_ClearAndSourceError(t *testing.T) {
	ctx := context.Background()
	c, err := NewController(ctx, testSource())
	require.NoError(t, err)
	require.NoError(t, c.Select(ctx, Province, 35))

	c.Clear(Province)
	_, ok := c.Selection().Get(Province)
	assert.False(t, ok)
	assert.Nil(t, c.Options(Regency))

	_, err = NewController(ctx, &mapSource{err: errors.New("db down")})
	assert.Error(t, err)
}

func TestController_FailedLoadKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	c, err := NewController(ctx, src)
	require.NoError(t, err)
	require.NoError(t, c.Select(ctx, Province, 32))
	require.NoError(t, c.Select(ctx, Regency, 3273))

	src.err = errors.New("db down")
	assert.Error(t, c.Select(ctx, Province, 35))

	province, ok := c.Selection().Get(Province)
	require.True(t, ok)
	assert.Equal(t, uint(32), province)
	regency, ok := c.Selection().Get(Regency)
	require.True(t, ok)
	assert.Equal(t, uint(3273), regency)
	assert.Equal(t, []Option{{ID: 327301, Name: "Sukasari"}}, c.Options(District))

	src.err = nil
	require.NoError(t, c.Select(ctx, Province, 35))
	assert.Len(t, c.Options(Regency), 2)
	_, ok = c.Selection().Get(Regency)
	assert.False(t, ok)
}
