// Package bccr retrieves the "tipo de cambio ventanilla" table published
// by the Banco Central de Costa Rica.
//
// Source: "BCCR"
// URL: https://gee.bccr.fi.cr/IndicadoresEconomicos/Cuadros/frmConsultaTCVentanilla.aspx
// Interval: 24 hours
//
// The consultation page is an ASP.NET form whose input names have changed
// between page revisions. Retrieval therefore runs in two stages:
//
//  1. Fetch the form page and resolve its fields heuristically: the start
//     date, end date and submit inputs are matched against ordered lists
//     of known name patterns, with caller-supplied overrides taking
//     precedence per role. Hidden fields (__VIEWSTATE and friends) are
//     captured so the postback round-trips them unchanged.
//  2. Submit the populated form using the method and action it declares,
//     then locate the result table by header-cue scoring and parse it
//     into header-keyed rows.
//
// A failed role resolution is a DetectionError naming the role, so the
// caller can pass the input name explicitly instead. Structural surprises
// in the response (no recognizable table, rows with the wrong cell count)
// abort the run rather than producing partial output.
package bccr
