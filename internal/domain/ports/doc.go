// Package ports declares the capabilities the domain depends on. Adapters in
// other packages implement them; services hold the interfaces, never the
// concrete adapters.
//
// Each port owns a closed error type: a struct with a Kind and a per-kind
// message template. Services map these into domain errors explicitly at each
// call site.
package ports

//go:generate mockgen -source=route.go -destination=mocks/route.go -package=mocks
//go:generate mockgen -source=users.go -destination=mocks/users.go -package=mocks
//go:generate mockgen -source=annotations.go -destination=mocks/annotations.go -package=mocks
//go:generate mockgen -source=idempotency.go -destination=mocks/idempotency.go -package=mocks
//go:generate mockgen -source=overpass.go -destination=mocks/overpass.go -package=mocks
//go:generate mockgen -source=provenance.go -destination=mocks/provenance.go -package=mocks
