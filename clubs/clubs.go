package clubs

import "strings"

// Club описывает клуб аргентинской лиги, на который может подписаться пользователь.
// SofascoreID и BesoccerSlug связывают клуб с внешними источниками данных о матчах.
type Club struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name"`
	SofascoreID  int    `json:"sofascore_id,omitempty"`
	BesoccerSlug string `json:"besoccer_slug,omitempty"`
}

var catalog = []Club{
	{ID: "river", Name: "River Plate", ShortName: "River", SofascoreID: 3211, BesoccerSlug: "ca-river-plate"},
	{ID: "boca", Name: "Boca Juniors", ShortName: "Boca", SofascoreID: 3202, BesoccerSlug: "ca-boca-juniors"},
	{ID: "racing", Name: "Racing Club", ShortName: "Racing", SofascoreID: 3215, BesoccerSlug: "racing-club"},
	{ID: "independiente", Name: "Independiente", ShortName: "Independiente", SofascoreID: 3209, BesoccerSlug: "ca-independiente"},
	{ID: "san-lorenzo", Name: "San Lorenzo", ShortName: "San Lorenzo", SofascoreID: 3201},
	{ID: "estudiantes", Name: "Estudiantes de La Plata", ShortName: "Estudiantes", SofascoreID: 3206},
	{ID: "velez", Name: "Vélez Sarsfield", ShortName: "Vélez", SofascoreID: 3208},
	{ID: "gimnasia", Name: "Gimnasia y Esgrima La Plata", ShortName: "Gimnasia", SofascoreID: 3205},
	{ID: "huracan", Name: "Huracán", ShortName: "Huracán", SofascoreID: 7629},
	{ID: "lanus", Name: "Lanús", ShortName: "Lanús", SofascoreID: 3218},
	{ID: "argentinos", Name: "Argentinos Juniors", ShortName: "Argentinos", SofascoreID: 3216},
	{ID: "defensa", Name: "Defensa y Justicia", ShortName: "Defensa", SofascoreID: 36839},
	{ID: "talleres", Name: "Talleres de Córdoba", ShortName: "Talleres", SofascoreID: 3210},
	{ID: "newells", Name: "Newell's Old Boys", ShortName: "Newell's", SofascoreID: 3212},
	{ID: "central", Name: "Rosario Central", ShortName: "Central", SofascoreID: 3217},
	{ID: "belgrano", Name: "Belgrano", ShortName: "Belgrano", SofascoreID: 3203},
	{ID: "banfield", Name: "Banfield", ShortName: "Banfield", SofascoreID: 3219},
	{ID: "godoy-cruz", Name: "Godoy Cruz", ShortName: "Godoy Cruz", SofascoreID: 6074},
	{ID: "colon", Name: "Colón", ShortName: "Colón", SofascoreID: 3207},
	{ID: "union", Name: "Unión", ShortName: "Unión", SofascoreID: 3204},
	{ID: "instituto", Name: "Instituto", ShortName: "Instituto", SofascoreID: 4937},
	{ID: "tigre", Name: "Tigre", ShortName: "Tigre", SofascoreID: 7628},
	{ID: "platense", Name: "Platense", ShortName: "Platense", SofascoreID: 36837},
	{ID: "sarmiento", Name: "Sarmiento", ShortName: "Sarmiento", SofascoreID: 42338},
	{ID: "barracas", Name: "Barracas Central", ShortName: "Barracas", SofascoreID: 65668},
	{ID: "riestra", Name: "Deportivo Riestra", ShortName: "Riestra", SofascoreID: 189723},
	{ID: "central-cordoba", Name: "Central Córdoba", ShortName: "Central Cba", SofascoreID: 65676},
	{ID: "atletico-tucuman", Name: "Atlético Tucumán", ShortName: "At. Tucumán", SofascoreID: 36833},
	{ID: "gimnasia-mendoza", Name: "Gimnasia y Esgrima Mendoza", ShortName: "Gimnasia Mdz", SofascoreID: 188441},
	{ID: "independiente-rivadavia", Name: "Independiente Rivadavia", ShortName: "Ind. Rivadavia", SofascoreID: 36842},
	{ID: "aldosivi", Name: "Aldosivi", ShortName: "Aldosivi", SofascoreID: 36836},
	{ID: "estudiantes-rio-cuarto", Name: "Estudiantes de Río Cuarto", ShortName: "Est. R. Cuarto", SofascoreID: 266694},
	{ID: "quilmes", Name: "Quilmes Atlético Club", ShortName: "Quilmes", SofascoreID: 4936},
}

// All возвращает копию каталога клубов.
func All() []Club {
	out := make([]Club, len(catalog))
	copy(out, catalog)
	return out
}

// ByID ищет клуб по идентификатору (без учёта регистра).
func ByID(id string) (Club, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Club{}, false
}

// IsValidID сообщает, существует ли клуб с данным идентификатором.
func IsValidID(id string) bool {
	_, ok := ByID(id)
	return ok
}
