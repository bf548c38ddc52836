package models

import "errors"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleBroker        Role = "broker"
	RoleTaxSpecialist Role = "tax-specialist"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleBroker, RoleTaxSpecialist:
		return Role(s), nil
	}
	return "", errors.New("invalid role: " + s)
}

type Market string

const (
	MarketAC      Market = "AC"
	MarketStocks  Market = "ACCIONES"
	MarketBonds   Market = "BONOS"
	MarketFutures Market = "FUTUROS"
)

func AllMarkets() []Market {
	return []Market{MarketAC, MarketStocks, MarketBonds, MarketFutures}
}

func ParseMarket(s string) (Market, error) {
	switch Market(s) {
	case MarketAC, MarketStocks, MarketBonds, MarketFutures:
		return Market(s), nil
	}
	return "", errors.New("invalid market: " + s)
}

// Origin is the provenance tag on a qualification record. It is derived
// from the creating user's role, never supplied by the client.
type Origin string

const (
	OriginAdmin         Origin = "ADMIN"
	OriginBroker        Origin = "BROKER"
	OriginTaxSpecialist Origin = "TAX"
)

func AllOrigins() []Origin {
	return []Origin{OriginAdmin, OriginBroker, OriginTaxSpecialist}
}

func ParseOrigin(s string) (Origin, error) {
	switch Origin(s) {
	case OriginAdmin, OriginBroker, OriginTaxSpecialist:
		return Origin(s), nil
	}
	return "", errors.New("invalid origin: " + s)
}

// ImportMode governs reconciliation for a whole ingestion batch.
type ImportMode string

const (
	// every surviving row inserts a new record, duplicates permitted
	ImportModeCreate ImportMode = "create"
	// rows overwrite the record matching (classification, name), insert when unmatched
	ImportModeUpdate ImportMode = "update"
)

func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ImportModeCreate, ImportModeUpdate:
		return ImportMode(s), nil
	}
	return "", errors.New("invalid import mode: " + s)
}
