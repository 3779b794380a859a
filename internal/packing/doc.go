// Package packing generates deterministic travel packing lists. A request is
// expanded from the item catalog by trip length, activities and time of day,
// adapted to the weather forecast, adjusted for airport security rules and
// finally fitted to the traveller's luggage capacity and weight limits with a
// value-density greedy selection.
package packing
