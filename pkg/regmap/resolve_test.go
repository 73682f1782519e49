package regmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

func namedPeripherals(names ...string) []*Peripheral {
	return utils.Map(names, func(name string) *Peripheral {
		return &Peripheral{Name: name}
	})
}

func matchNames(r Resolution[*Peripheral]) []string {
	return utils.Map(r.Matches, func(p *Peripheral) string { return p.Name })
}

func TestResolve_UniquePrefix(t *testing.T) {
	candidates := namedPeripherals("UART1", "UART2", "USART3")

	r := Resolve(candidates, "US")

	require.True(t, r.Unique())
	assert.False(t, r.Exact())
	assert.Equal(t, "USART3", r.Entity().Name)
}

func TestResolve_Ambiguous(t *testing.T) {
	candidates := namedPeripherals("UART1", "UART2", "USART3")

	r := Resolve(candidates, "UA")

	assert.True(t, r.Ambiguous())
	assert.False(t, r.Unique())
	assert.Equal(t, []string{"UART1", "UART2"}, matchNames(r))
}

func TestResolve_NoMatch(t *testing.T) {
	candidates := namedPeripherals("UART1", "UART2", "USART3")

	r := Resolve(candidates, "SPI")

	assert.True(t, r.None())
	assert.Empty(t, r.Matches)
	assert.Nil(t, r.Entity())
}

func TestResolve_CaseInsensitive(t *testing.T) {
	candidates := namedPeripherals("GPIOA", "GPIOB")

	r := Resolve(candidates, "gpioa")

	require.True(t, r.Unique())
	assert.True(t, r.Exact())
	assert.Equal(t, "GPIOA", r.Entity().Name)
}

func TestResolve_ExactNameBeatsWiderPrefix(t *testing.T) {
	candidates := namedPeripherals("UART12", "UART1")

	r := Resolve(candidates, "UART1")

	require.True(t, r.Unique())
	assert.True(t, r.Exact())
	assert.Equal(t, "UART1", r.Entity().Name)
}

func TestResolve_EmptyQueryMatchesNothing(t *testing.T) {
	candidates := namedPeripherals("UART1", "UART2")

	r := Resolve(candidates, "")

	assert.True(t, r.None())
}

func TestResolve_Fields(t *testing.T) {
	fields := []*Field{
		{Name: "MODER0"},
		{Name: "MODER1"},
		{Name: "OT"},
	}

	r := Resolve(fields, "MODER")
	assert.True(t, r.Ambiguous())
	assert.Len(t, r.Matches, 2)

	r = Resolve(fields, "OT")
	require.True(t, r.Unique())
	assert.True(t, r.Exact())
	assert.Equal(t, "OT", r.Entity().Name)
}
