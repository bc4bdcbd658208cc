// Package language provides unified language code normalization and naming.
//
// Translation targets come from user configuration, so codes arrive in mixed
// case and regional variants ("EN", "pt-BR"). All conversions are
// consolidated here so config validation and document rendering agree on the
// canonical form.
package language
