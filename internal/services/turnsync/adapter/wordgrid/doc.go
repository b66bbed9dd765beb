// Package wordgrid adapts the 15×15 letter-placement game.
//
// Pending tiles come from the local rack. Connectivity groups are computed
// over committed and pending tiles; word validity and scoring are left to the
// authority preview.
package wordgrid
