package geo

// PlaceDescriptor is the coarse place label derived from a coordinate.
// Immutable once produced; derived purely from the static box table.
type PlaceDescriptor struct {
	City        string `json:"city"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	DisplayName string `json:"display_name"`
	Source      string `json:"source"`
}

// IsGeneric reports whether this is the terminal fallback descriptor
// (no bounding box matched).
func (p PlaceDescriptor) IsGeneric() bool {
	return p.Source == sourceFallback
}

// Locality returns the most specific non-empty label for query phrasing:
// city when the match was a city box, otherwise the country.
func (p PlaceDescriptor) Locality() string {
	if p.City != "" {
		return p.City
	}
	return p.Country
}

const sourceFallback = "fallback"

// boundingBox is an axis-aligned lat/lng rectangle with the descriptor
// it resolves to. Boxes are inclusive on all edges.
type boundingBox struct {
	tag            string
	minLat, maxLat float64
	minLng, maxLng float64
	place          PlaceDescriptor
}

// placeBoxes is the ordered classifier table. Order is load-bearing:
// city boxes precede their country box, so the more specific match wins,
// and earlier countries win where country boxes overlap (northern Mexico
// vs. the US southwest). Keep new city boxes above their country entry.
var placeBoxes = []boundingBox{
	// México
	{"mx-cdmx", 19.0, 19.6, -99.4, -98.85, PlaceDescriptor{City: "Ciudad de México", Region: "CDMX", Country: "México", DisplayName: "Ciudad de México, CDMX, México"}},
	{"mx-gdl", 20.5, 20.8, -103.5, -103.2, PlaceDescriptor{City: "Guadalajara", Region: "Jalisco", Country: "México", DisplayName: "Guadalajara, Jalisco, México"}},
	{"mx-mty", 25.5, 25.9, -100.5, -100.1, PlaceDescriptor{City: "Monterrey", Region: "Nuevo León", Country: "México", DisplayName: "Monterrey, Nuevo León, México"}},
	{"mx", 14.5, 32.7, -118.5, -86.5, PlaceDescriptor{Country: "México", DisplayName: "México"}},

	// United States
	{"us-nyc", 40.45, 41.0, -74.3, -73.6, PlaceDescriptor{City: "New York", Region: "New York", Country: "United States", DisplayName: "New York, NY, United States"}},
	{"us-la", 33.6, 34.4, -118.7, -117.9, PlaceDescriptor{City: "Los Angeles", Region: "California", Country: "United States", DisplayName: "Los Angeles, CA, United States"}},
	{"us-mia", 25.5, 26.1, -80.5, -80.0, PlaceDescriptor{City: "Miami", Region: "Florida", Country: "United States", DisplayName: "Miami, FL, United States"}},
	{"us", 24.5, 49.5, -125.0, -66.9, PlaceDescriptor{Country: "United States", DisplayName: "United States"}},

	// España
	{"es-mad", 40.2, 40.65, -3.95, -3.4, PlaceDescriptor{City: "Madrid", Region: "Comunidad de Madrid", Country: "España", DisplayName: "Madrid, España"}},
	{"es-bcn", 41.2, 41.6, 1.9, 2.4, PlaceDescriptor{City: "Barcelona", Region: "Cataluña", Country: "España", DisplayName: "Barcelona, Cataluña, España"}},
	{"es", 35.9, 43.9, -9.5, 3.4, PlaceDescriptor{Country: "España", DisplayName: "España"}},

	// Argentina
	{"ar-ba", -34.92, -34.4, -58.85, -58.2, PlaceDescriptor{City: "Buenos Aires", Region: "Buenos Aires", Country: "Argentina", DisplayName: "Buenos Aires, Argentina"}},
	{"ar", -55.1, -21.7, -73.6, -53.6, PlaceDescriptor{Country: "Argentina", DisplayName: "Argentina"}},

	// Colombia
	{"co-bog", 4.4, 4.85, -74.25, -73.95, PlaceDescriptor{City: "Bogotá", Region: "Cundinamarca", Country: "Colombia", DisplayName: "Bogotá, Colombia"}},
	{"co", -4.3, 12.6, -79.1, -66.8, PlaceDescriptor{Country: "Colombia", DisplayName: "Colombia"}},

	// Brasil
	{"br-sp", -23.8, -23.3, -46.85, -46.3, PlaceDescriptor{City: "São Paulo", Region: "São Paulo", Country: "Brasil", DisplayName: "São Paulo, Brasil"}},
	{"br", -33.8, 5.3, -73.9, -34.8, PlaceDescriptor{Country: "Brasil", DisplayName: "Brasil"}},

	// United Kingdom
	{"uk-lon", 51.25, 51.7, -0.55, 0.35, PlaceDescriptor{City: "London", Region: "England", Country: "United Kingdom", DisplayName: "London, United Kingdom"}},
	{"uk", 49.9, 58.7, -8.2, 1.8, PlaceDescriptor{Country: "United Kingdom", DisplayName: "United Kingdom"}},

	// France
	{"fr-par", 48.7, 49.0, 2.1, 2.6, PlaceDescriptor{City: "París", Region: "Île-de-France", Country: "Francia", DisplayName: "París, Francia"}},
	{"fr", 42.3, 51.1, -5.2, 8.3, PlaceDescriptor{Country: "Francia", DisplayName: "Francia"}},

	// Japan
	{"jp-tyo", 35.4, 35.9, 139.3, 140.0, PlaceDescriptor{City: "Tokio", Region: "Kantō", Country: "Japón", DisplayName: "Tokio, Japón"}},
	{"jp", 30.9, 45.6, 129.5, 146.0, PlaceDescriptor{Country: "Japón", DisplayName: "Japón"}},
}

// genericPlace is the terminal descriptor for coordinates no box covers.
var genericPlace = PlaceDescriptor{
	City:        "generic location",
	Region:      "local area",
	Country:     "region",
	DisplayName: "generic location",
	Source:      sourceFallback,
}

// Classify maps a coordinate to a PlaceDescriptor. Total function: the
// first box containing the coordinate wins, and the generic fallback is
// returned when none matches. No I/O, deterministic.
func Classify(c Coordinate) PlaceDescriptor {
	for _, b := range placeBoxes {
		if c.Lat >= b.minLat && c.Lat <= b.maxLat && c.Lng >= b.minLng && c.Lng <= b.maxLng {
			p := b.place
			p.Source = "bbox:" + b.tag
			return p
		}
	}
	return genericPlace
}
