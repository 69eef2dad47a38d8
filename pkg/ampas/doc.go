// Package ampas reads AMPAS-style spectral data.
//
// The text form is line oriented: comments start with '#', header lines are
// "key = value" or "key: value", an optional column-definition line names
// the series, and data rows hold a wavelength followed by one value per
// series. Parsing runs in two phases. Scanning is tolerant and never fails;
// the header, table and validation phases are strict and every problem they
// find is reported together in one [spectral.ReadError].
//
// The JSON form ("header" plus "spectral_data") is validated against an
// embedded JSON schema before it is decoded.
package ampas
