package domain

// Track es la proyeccion de solo lectura de un resultado de busqueda del proveedor de musica.
type Track struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	AlbumArtURL string  `json:"album_art_url"`
	PreviewURL  *string `json:"preview_url,omitempty"`
	ProviderURL string  `json:"provider_url"`
	DurationMs  int     `json:"duration_ms"`
}
