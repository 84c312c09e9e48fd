// Package model holds the normalized shape of one processed weekly report.
// JSON tags follow the field names the dashboard front end consumes.
package model

import "encoding/json"

// AreaCount is the fixed number of operational areas per report.
const AreaCount = 9

// Subactivity is either numeric (Value, Description, Details) or boolean
// (Active). Boolean selects the shape.
type Subactivity struct {
	Name        string
	Value       int
	Description string
	Details     OrderedMap[int]
	Active      bool
	Boolean     bool
}

// Numeric builds a numeric subactivity.
func Numeric(name string, value int) Subactivity {
	return Subactivity{Name: name, Value: value}
}

// Flag builds a boolean subactivity.
func Flag(name string, active bool) Subactivity {
	return Subactivity{Name: name, Active: active, Boolean: true}
}

// Engaged reports whether the subactivity shows any activity this week.
func (s Subactivity) Engaged() bool {
	if s.Boolean {
		return s.Active
	}
	return s.Value > 0
}

type numericJSON struct {
	Name        string          `json:"nombre"`
	Value       int             `json:"valor"`
	Description string          `json:"descripcion,omitempty"`
	Details     OrderedMap[int] `json:"detalles,omitempty"`
}

type booleanJSON struct {
	Name   string `json:"nombre"`
	Active bool   `json:"activo"`
}

func (s Subactivity) MarshalJSON() ([]byte, error) {
	if s.Boolean {
		return json.Marshal(booleanJSON{Name: s.Name, Active: s.Active})
	}
	return json.Marshal(numericJSON{
		Name:        s.Name,
		Value:       s.Value,
		Description: s.Description,
		Details:     s.Details,
	})
}

func (s *Subactivity) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string          `json:"nombre"`
		Value       int             `json:"valor"`
		Description string          `json:"descripcion"`
		Details     OrderedMap[int] `json:"detalles"`
		Active      *bool           `json:"activo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Subactivity{
		Name:        raw.Name,
		Value:       raw.Value,
		Description: raw.Description,
		Details:     raw.Details,
	}
	if raw.Active != nil {
		s.Boolean = true
		s.Active = *raw.Active
	}
	return nil
}

// AreaRecord is one of the nine operational areas of a report.
type AreaRecord struct {
	Name          string                  `json:"nombre"`
	Subactivities OrderedMap[Subactivity] `json:"subactividades"`
	Totals        OrderedMap[int]         `json:"totales"`
}

// Value returns the numeric value of a subactivity, 0 when absent.
func (a AreaRecord) Value(key string) int {
	s, _ := a.Subactivities.Get(key)
	return s.Value
}

// Total returns an aggregate of the area, 0 when absent.
func (a AreaRecord) Total(key string) int {
	v, _ := a.Totals.Get(key)
	return v
}

// Detail returns one detail entry of a numeric subactivity.
func (a AreaRecord) Detail(sub, key string) int {
	s, _ := a.Subactivities.Get(sub)
	v, _ := s.Details.Get(key)
	return v
}

// Legacy mirrors headline values that also live inside the areas. The
// dashboard still reads them from the top level of the record.
type Legacy struct {
	Videoconferencias     int `json:"videoconferencias"`
	Streamings            int `json:"streamings"`
	Grabaciones           int `json:"grabaciones"`
	SolicitudesVideoconf  int `json:"solicitudesVideoconf"`
	ProyectosActivos      int `json:"proyectosActivos"`
	EquiposConfigurados   int `json:"equiposConfigurados"`
	ReservasPuntuales     int `json:"reservasPuntuales"`
	ActivacionesLicencia  int `json:"activacionesLicencia"`
	AtencionCorreo        int `json:"atencionCorreo"`
	UsuariosCENDOI        int `json:"usuariosCENDOI"`
	Libros                int `json:"libros"`
	PCs                   int `json:"pcs"`
	Diademas              int `json:"diademas"`
	ReunionesUGP          int `json:"reunionesUGP"`
	TalentoTechMatriculas int `json:"talentoTechMatriculas"`
	PQRSAtendidas         int `json:"pqrsAtendidas"`
	DisenosRealizados     int `json:"disenosRealizados"`
	ComprasGestionadas    int `json:"comprasGestionadas"`
	Contrataciones        int `json:"contrataciones"`
	Transferencias        int `json:"transferencias"`
}

// Field returns a pointer to the legacy field with the given JSON name, or
// nil if there is none.
func (l *Legacy) Field(name string) *int {
	switch name {
	case "videoconferencias":
		return &l.Videoconferencias
	case "streamings":
		return &l.Streamings
	case "grabaciones":
		return &l.Grabaciones
	case "solicitudesVideoconf":
		return &l.SolicitudesVideoconf
	case "proyectosActivos":
		return &l.ProyectosActivos
	case "equiposConfigurados":
		return &l.EquiposConfigurados
	case "reservasPuntuales":
		return &l.ReservasPuntuales
	case "activacionesLicencia":
		return &l.ActivacionesLicencia
	case "atencionCorreo":
		return &l.AtencionCorreo
	case "usuariosCENDOI":
		return &l.UsuariosCENDOI
	case "libros":
		return &l.Libros
	case "pcs":
		return &l.PCs
	case "diademas":
		return &l.Diademas
	case "reunionesUGP":
		return &l.ReunionesUGP
	case "talentoTechMatriculas":
		return &l.TalentoTechMatriculas
	case "pqrsAtendidas":
		return &l.PQRSAtendidas
	case "disenosRealizados":
		return &l.DisenosRealizados
	case "comprasGestionadas":
		return &l.ComprasGestionadas
	case "contrataciones":
		return &l.Contrataciones
	case "transferencias":
		return &l.Transferencias
	}
	return nil
}

// MetricsRecord is the normalized output of one weekly report. Week is the
// unique key inside the store.
type MetricsRecord struct {
	Week       int        `json:"semana"`
	ReportDate string     `json:"fecha"`
	Area1      AreaRecord `json:"area1"`
	Area2      AreaRecord `json:"area2"`
	Area3      AreaRecord `json:"area3"`
	Area4      AreaRecord `json:"area4"`
	Area5      AreaRecord `json:"area5"`
	Area6      AreaRecord `json:"area6"`
	Area7      AreaRecord `json:"area7"`
	Area8      AreaRecord `json:"area8"`
	Area9      AreaRecord `json:"area9"`
	Legacy
}

// Areas returns the nine areas in order, as pointers into the record.
func (r *MetricsRecord) Areas() [AreaCount]*AreaRecord {
	return [AreaCount]*AreaRecord{
		&r.Area1, &r.Area2, &r.Area3, &r.Area4, &r.Area5,
		&r.Area6, &r.Area7, &r.Area8, &r.Area9,
	}
}

// Area returns area n (1-based), or nil when n is out of range.
func (r *MetricsRecord) Area(n int) *AreaRecord {
	if n < 1 || n > AreaCount {
		return nil
	}
	return r.Areas()[n-1]
}
