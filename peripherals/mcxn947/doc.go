// Package mcxn947 gives the clocked peripherals of the MCXN947 typed names,
// so that gate calls are checked at compile time instead of by table lookup.
package mcxn947

//go:generate go run ../../cmd/gate-gen --chip mcxn947 --out ..
