package domain

// Shop es un local visible en el feed de descubrimiento. IsFavorite es el
// único campo que el núcleo de orquestación muta; el resto viene del backend
// y se trata como solo lectura.
type Shop struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Area        string       `json:"area,omitempty"`
	Genre       string       `json:"genre,omitempty"`
	Address     string       `json:"address,omitempty"`
	IsFavorite  bool         `json:"is_favorite"`
	UsageWindow *UsageWindow `json:"coupon_usage_window,omitempty"`
}

// UsageWindow acota los días y horas en que los cupones del local se
// pueden canjear. Days usa time.Weekday serializado como 0=domingo.
type UsageWindow struct {
	Days      []int  `json:"days"`
	StartTime string `json:"start_time"` // "HH:MM"
	EndTime   string `json:"end_time"`   // "HH:MM"
}
