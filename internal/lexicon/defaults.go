package lexicon

func halfSteps(from, to float64) []float64 {
	var out []float64
	for v := from; v <= to+1e-9; v += 0.5 {
		out = append(out, v)
	}
	return out
}

func defaults() *Lexicon {
	psa := append(halfSteps(1, 8.5), 9, 10)
	bgs := append(halfSteps(1, 9.5), 10)

	return &Lexicon{
		Version: "2026.1",
		Stopwords: []string{
			// manufacturers and product lines
			"topps", "panini", "upper deck", "fleer", "donruss", "bowman", "score", "leaf",
			"hoops", "prizm", "chrome", "optic", "select", "mosaic", "finest", "heritage",
			"stadium club", "contenders", "chronicles", "national treasures", "update", "series",
			// inserts and finishes
			"refractor", "xfractor", "superfractor", "holo", "silver", "gold", "shimmer",
			"cracked ice", "insert", "parallel", "base", "variation", "ssp", "sp",
			"auto", "autograph", "autographs", "signed", "patch", "relic", "jersey", "memorabilia",
			"rookie", "rc", "rated", "draft", "pick", "prospect", "prospects", "debut",
			// legal and back-of-card boilerplate
			"card", "cards", "trading", "licensed", "printed", "copyright", "all", "rights",
			"reserved", "inc", "llc", "ltd", "officially", "product", "made", "in", "usa",
			"china", "www", "com", "the", "of", "and", "for", "by", "to", "a", "no",
			// leagues, sports, grading
			"nba", "nfl", "mlb", "nhl", "wnba", "ncaa", "mls", "basketball", "baseball",
			"football", "hockey", "soccer", "psa", "bgs", "sgc", "cgc", "gem", "mint",
			"team", "front", "back", "height", "weight", "born", "college", "games",
		},
		Brands: []Brand{
			{Name: "Topps", Keywords: []string{"topps"}},
			{Name: "Panini", Keywords: []string{"panini", "donruss", "prizm", "optic", "mosaic", "select", "hoops", "contenders"}},
			{Name: "Upper Deck", Keywords: []string{"upper deck"}},
			{Name: "Bowman", Keywords: []string{"bowman"}},
			{Name: "Fleer", Keywords: []string{"fleer"}},
			{Name: "Leaf", Keywords: []string{"leaf"}},
			{Name: "Score", Keywords: []string{"score"}},
		},
		Sets: []Set{
			{Name: "Topps Chrome", Brand: "Topps", Keywords: []string{"topps chrome"}},
			{Name: "Bowman Chrome", Brand: "Bowman", Keywords: []string{"bowman chrome"}},
			{Name: "Topps Finest", Brand: "Topps", Keywords: []string{"topps finest", "finest"}},
			{Name: "Topps Heritage", Brand: "Topps", Keywords: []string{"topps heritage", "heritage"}},
			{Name: "Topps Update", Brand: "Topps", Keywords: []string{"topps update"}},
			{Name: "Stadium Club", Brand: "Topps", Keywords: []string{"stadium club"}},
			{Name: "Topps", Brand: "Topps", Keywords: []string{"topps"}},
			{Name: "Bowman", Brand: "Bowman", Keywords: []string{"bowman"}},
			{Name: "Prizm", Brand: "Panini", Keywords: []string{"panini prizm", "prizm"}},
			{Name: "Donruss Optic", Brand: "Panini", Keywords: []string{"donruss optic", "optic"}},
			{Name: "Donruss", Brand: "Panini", Keywords: []string{"donruss"}},
			{Name: "Select", Brand: "Panini", Keywords: []string{"panini select", "select"}},
			{Name: "Mosaic", Brand: "Panini", Keywords: []string{"panini mosaic", "mosaic"}},
			{Name: "Hoops", Brand: "Panini", Keywords: []string{"nba hoops", "hoops"}},
			{Name: "National Treasures", Brand: "Panini", Keywords: []string{"national treasures"}},
			{Name: "Upper Deck", Brand: "Upper Deck", Keywords: []string{"upper deck"}},
			{Name: "Fleer", Brand: "Fleer", Keywords: []string{"fleer"}},
			{Name: "Fleer Ultra", Brand: "Fleer", Keywords: []string{"fleer ultra"}},
			{Name: "Score", Brand: "Score", Keywords: []string{"score"}},
		},
		Parallels: []string{
			"silver prizm", "gold prizm", "red prizm", "blue prizm", "green prizm", "black prizm",
			"hyper prizm", "mojo prizm", "refractor", "gold refractor", "blue refractor",
			"atomic refractor", "xfractor", "superfractor", "cracked ice", "holo", "shimmer",
			"silver", "gold", "gold vinyl", "black finite", "mojo",
		},
		ChromiumKeywords:     []string{"chrome", "refractor", "prizm", "optic", "select", "mosaic"},
		PaperKeywords:        []string{"topps", "upper deck", "fleer", "donruss", "score", "bowman", "leaf", "hoops", "stadium club", "heritage"},
		ChromiumOnlyFinishes: []string{"prizm", "refractor", "chrome"},
		Players: []Player{
			{Name: "Victor Wembanyama", Aliases: []string{"wemby"}},
			{Name: "Cooper Flagg"},
			{Name: "Caitlin Clark"},
			{Name: "Shohei Ohtani"},
			{Name: "Michael Jordan"},
			{Name: "LeBron James"},
			{Name: "Luka Doncic"},
			{Name: "Patrick Mahomes"},
			{Name: "Connor McDavid"},
			{Name: "Mike Trout"},
			{Name: "Ken Griffey Jr", Aliases: []string{"griffey"}},
		},
		Catalog: []CatalogEntry{
			{Name: "Prizm", Years: "2012-Present"},
			{Name: "Donruss Optic", Years: "2016-Present"},
			{Name: "Mosaic", Years: "2019-Present"},
			{Name: "Select", Years: "2012-Present"},
			{Name: "Topps Chrome", Years: "1996-Present"},
			{Name: "Bowman Chrome", Years: "1997-Present"},
			{Name: "Topps Finest", Years: "1993-Present"},
			{Name: "Topps Heritage", Years: "2001-Present"},
			{Name: "Stadium Club", Years: "1991-Present"},
			{Name: "National Treasures", Years: "2008-Present"},
			{Name: "Upper Deck", Years: "1989-Present"},
			{Name: "Fleer Ultra", Years: "1991-2007"},
			{Name: "Fleer", Years: "1981-2007"},
			{Name: "Hoops", Years: "1989-Present"},
		},
		GradingScales: []GradingScale{
			{Company: "PSA", Grades: psa},
			{Company: "BGS", Grades: bgs},
			{Company: "SGC", Grades: bgs},
			{Company: "CGC", Grades: bgs},
		},
	}
}
