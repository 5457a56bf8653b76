package bccr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTable_SingleTable(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `
	<table>
		<tr><th>Fecha</th><th>Compra</th><th>Venta</th></tr>
		<tr><td>01/01/2024</td><td>500.00</td><td>510.00</td></tr>
	</table>`)

	table, err := ExtractTable(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"Fecha", "Compra", "Venta"}, table.Headers)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"01/01/2024", "500.00", "510.00"}, table.Rows[0])
}

func TestExtractTable_CellText(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `
	<table>
		<tr><th> Fecha </th><th>D&oacute;lar Compra</th><th>Venta
		del d&iacute;a</th></tr>
		<tr><td>
			02/01/2024
		</td><td><b>501.25</b></td><td></td></tr>
	</table>`)

	table, err := ExtractTable(doc)
	require.NoError(t, err)

	// trimmed, entity-decoded, inner whitespace collapsed
	assert.Equal(t, []string{"Fecha", "Dólar Compra", "Venta del día"}, table.Headers)

	require.Len(t, table.Rows, 1)

	// nested markup flattened, empty cells preserved
	assert.Equal(t, []string{"02/01/2024", "501.25", ""}, table.Rows[0])
}

func TestExtractTable_Selection(t *testing.T) {
	t.Parallel()

	t.Run("cue score picks the data table", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<table>
			<tr><td>Inicio</td><td>Indicadores</td><td>Ayuda</td></tr>
			<tr><td>a</td><td>b</td><td>c</td></tr>
		</table>
		<table>
			<tr><th>Fecha</th><th>Compra</th><th>Venta</th></tr>
			<tr><td>01/01/2024</td><td>500.00</td><td>510.00</td></tr>
		</table>`)

		table, err := ExtractTable(doc)
		require.NoError(t, err)

		assert.Equal(t, []string{"Fecha", "Compra", "Venta"}, table.Headers)
	})

	t.Run("no table resembles the schema", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<table><tr><td>Inicio</td><td>Ayuda</td></tr></table>
		<table><tr><td>Mapa</td><td>Contacto</td></tr></table>`)

		_, err := ExtractTable(doc)
		assert.ErrorIs(t, err, ErrNoTable)
	})

	t.Run("no tables at all", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `<p>Sin resultados</p>`)

		_, err := ExtractTable(doc)
		assert.ErrorIs(t, err, ErrNoTable)
	})
}

func TestExtractTable_MalformedRow(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `
	<table>
		<tr><th>Fecha</th><th>Compra</th><th>Venta</th></tr>
		<tr><td>01/01/2024</td><td>500.00</td><td>510.00</td></tr>
		<tr><td>02/01/2024</td><td>501.00</td></tr>
	</table>`)

	table, err := ExtractTable(doc)

	var rowErr *MalformedRowError

	require.ErrorAs(t, err, &rowErr)

	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, 2, rowErr.Cells)
	assert.Equal(t, 3, rowErr.Want)

	// no partial output on abort
	assert.Nil(t, table)
}

func TestTable_Records(t *testing.T) {
	t.Parallel()

	table := &Table{
		Headers: []string{"Fecha", "Compra", "Venta"},
		Rows: [][]string{
			{"01/01/2024", "500.00", "510.00"},
		},
	}

	assert.Equal(t, [][]string{
		{"Fecha", "Compra", "Venta"},
		{"01/01/2024", "500.00", "510.00"},
	}, table.Records())
}

func TestTable_ColumnIndex(t *testing.T) {
	t.Parallel()

	table := &Table{
		Headers: []string{"Fecha", "Compra", "Venta"},
	}

	assert.Equal(t, 0, table.ColumnIndex("fecha", "date"))
	assert.Equal(t, 1, table.ColumnIndex("compra"))
	assert.Equal(t, 2, table.ColumnIndex("venta", "sell"))
	assert.Equal(t, -1, table.ColumnIndex("promedio"))
}
