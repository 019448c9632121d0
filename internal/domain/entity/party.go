package entity

// PartyKind tipo de origen/destino de un movimiento.
type PartyKind string

// Tipos de parte soportados. Una parte sin tipo se interpreta como ubicación nombrada.
const (
	PartyLocation PartyKind = "location" // bodega, estante, carro de curaciones
	PartySupplier PartyKind = "supplier" // proveedor
	PartyUser     PartyKind = "user"     // personal interno
	PartyClient   PartyKind = "client"   // paciente / cliente
)

// Valid indica si el tipo pertenece al conjunto cerrado de partes.
func (k PartyKind) Valid() bool {
	switch k {
	case PartyLocation, PartySupplier, PartyUser, PartyClient:
		return true
	}
	return false
}

// Party origen o destino ya resuelto de un movimiento.
type Party struct {
	Kind PartyKind
	ID   string
}

// LocationKey clave de ubicación en stock_locations.
// Las ubicaciones nombradas usan su ID tal cual; el resto un balde lógico "<tipo>:<id>".
func (p Party) LocationKey() string {
	if p.Kind == PartyLocation || p.Kind == "" {
		return p.ID
	}
	return string(p.Kind) + ":" + p.ID
}

// Same dos partes son la misma si apuntan a la misma clave de ubicación.
func (p Party) Same(other Party) bool {
	return p.LocationKey() == other.LocationKey()
}
