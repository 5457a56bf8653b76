package bccr

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	return doc
}

const consultationPage = `
<html><body>
<form action="frmConsultaTCVentanilla.aspx" method="post">
	<input type="hidden" name="__VIEWSTATE" value="dDwtMTQ4OTIx" />
	<input type="hidden" name="__EVENTVALIDATION" value="AbCdEf" />
	<input type="text" name="txtFechaInicio" />
	<input type="text" name="txtFechaFinal" />
	<input type="submit" name="btnConsultar" value="Consultar" />
</form>
</body></html>`

func TestDetectForm_KnownPage(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, consultationPage)

	form, err := DetectForm(doc, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "txtFechaInicio", form.Start.Name)
	assert.Equal(t, FieldDetected, form.Start.Source)
	assert.Equal(t, RoleStartDate, form.Start.Role)

	assert.Equal(t, "txtFechaFinal", form.End.Name)
	assert.Equal(t, FieldDetected, form.End.Source)

	require.NotNil(t, form.Submit)
	assert.Equal(t, "btnConsultar", form.Submit.Name)
	assert.Equal(t, "Consultar", form.Submit.Value)

	assert.Equal(t, "POST", form.Method)
	assert.Equal(t, "frmConsultaTCVentanilla.aspx", form.Action)

	assert.Equal(t, "dDwtMTQ4OTIx", form.Hidden.Get("__VIEWSTATE"))
	assert.Equal(t, "AbCdEf", form.Hidden.Get("__EVENTVALIDATION"))
}

func TestDetectForm_Deterministic(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, consultationPage)

	first, err := DetectForm(doc, Overrides{})
	require.NoError(t, err)

	for range 20 {
		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		assert.Equal(t, first, form)
	}
}

func TestDetectForm_Priority(t *testing.T) {
	t.Parallel()

	t.Run("higher tier beats document order", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="text" name="txtDesde" />
			<input type="text" name="txtFechaInicio" />
			<input type="text" name="txtHasta" />
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		assert.Equal(t, "txtFechaInicio", form.Start.Name)
		assert.Equal(t, "txtHasta", form.End.Name)
	})

	t.Run("same tier resolved by document order", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="text" name="ctl00_txtFechaInicio" />
			<input type="text" name="ctl01_txtFechaInicio" />
			<input type="text" name="txtFechaFinal" />
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		assert.Equal(t, "ctl00_txtFechaInicio", form.Start.Name)
	})
}

func TestDetectForm_Overrides(t *testing.T) {
	t.Parallel()

	t.Run("overrides win per role", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, consultationPage)

		form, err := DetectForm(doc, Overrides{
			StartField: "customStart",
		})
		require.NoError(t, err)

		assert.Equal(t, "customStart", form.Start.Name)
		assert.Equal(t, FieldUserOverride, form.Start.Source)

		// the other roles still detect
		assert.Equal(t, "txtFechaFinal", form.End.Name)
		assert.Equal(t, FieldDetected, form.End.Source)
	})

	t.Run("overrides rescue an undetectable page", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="text" name="xA1" />
			<input type="text" name="xB2" />
		</form>`)

		form, err := DetectForm(doc, Overrides{
			StartField:  "xA1",
			EndField:    "xB2",
			SubmitField: "xC3",
		})
		require.NoError(t, err)

		assert.Equal(t, "xA1", form.Start.Name)
		assert.Equal(t, "xB2", form.End.Name)

		require.NotNil(t, form.Submit)
		assert.Equal(t, "xC3", form.Submit.Name)
		assert.Equal(t, FieldUserOverride, form.Submit.Source)
	})
}

func TestDetectForm_DetectionErrors(t *testing.T) {
	t.Parallel()

	t.Run("no date inputs at all", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `<form><input type="submit" name="btnConsultar" /></form>`)

		_, err := DetectForm(doc, Overrides{})

		var detErr *DetectionError

		require.ErrorAs(t, err, &detErr)
		assert.Equal(t, RoleStartDate, detErr.Role)
	})

	t.Run("end field unresolvable", func(t *testing.T) {
		t.Parallel()

		// "txtFecha" satisfies the start fallback tier, and must not
		// be reused for the end role
		doc := docFromHTML(t, `<form><input type="text" name="txtFecha" /></form>`)

		_, err := DetectForm(doc, Overrides{})

		var detErr *DetectionError

		require.ErrorAs(t, err, &detErr)
		assert.Equal(t, RoleEndDate, detErr.Role)
	})
}

func TestDetectForm_Submit(t *testing.T) {
	t.Parallel()

	t.Run("document order fallback on name miss", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="text" name="txtFechaInicio" />
			<input type="text" name="txtFechaFinal" />
			<input type="submit" name="btnRandom" value="Ir" />
			<input type="submit" name="btnOther" value="No" />
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		require.NotNil(t, form.Submit)
		assert.Equal(t, "btnRandom", form.Submit.Name)
		assert.Equal(t, "Ir", form.Submit.Value)
	})

	t.Run("button element counts as submit", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="text" name="txtFechaInicio" />
			<input type="text" name="txtFechaFinal" />
			<button name="btnGenerar">Generar</button>
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		require.NotNil(t, form.Submit)
		assert.Equal(t, "btnGenerar", form.Submit.Name)
	})

	t.Run("missing submit control is not an error", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="text" name="txtFechaInicio" />
			<input type="text" name="txtFechaFinal" />
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		assert.Nil(t, form.Submit)
	})
}

func TestDetectForm_FormAttributes(t *testing.T) {
	t.Parallel()

	t.Run("missing method defaults to GET", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form action="/consulta">
			<input type="text" name="txtFechaInicio" />
			<input type="text" name="txtFechaFinal" />
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		assert.Equal(t, "GET", form.Method)
		assert.Equal(t, "/consulta", form.Action)
	})

	t.Run("id used when name is absent", func(t *testing.T) {
		t.Parallel()

		doc := docFromHTML(t, `
		<form method="post">
			<input type="date" id="fechaInicial" />
			<input type="date" id="fechaFinal" />
		</form>`)

		form, err := DetectForm(doc, Overrides{})
		require.NoError(t, err)

		assert.Equal(t, "fechaInicial", form.Start.Name)
		assert.Equal(t, "fechaFinal", form.End.Name)
	})
}
