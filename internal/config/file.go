package config

// On-disk TOML shapes. Values stay loosely typed where the file format
// accepts more than one form.

type fileConfig struct {
	Dungeon    dungeonFile    `toml:"dungeon"`
	Evaluation evaluationFile `toml:"evaluation"`
	Ollama     ollamaFile     `toml:"ollama"`
	Narrative  narrativeFile  `toml:"narrative"`
	Content    contentFile    `toml:"content"`
}

type dungeonFile struct {
	Axiom      *string                `toml:"axiom"`
	Iterations *int                   `toml:"iterations"`
	Rules      map[string]any         `toml:"rules"`
	Symbols    map[string]symbolEntry `toml:"symbols"`
}

type symbolEntry struct {
	Label string `toml:"label"`
	Tags  any    `toml:"tags"`
	Color string `toml:"color"`
}

type evaluationFile struct {
	CandidateCount  *int               `toml:"candidate_count"`
	TargetRoomCount *int               `toml:"target_room_count"`
	Workers         *int               `toml:"workers"`
	MaxRetries      *int               `toml:"max_retries"`
	MaxSymbols      *int               `toml:"max_symbols"`
	Weights         map[string]float64 `toml:"weights"`
}

type promptFile struct {
	System   string `toml:"system"`
	Template string `toml:"template"`
}

type ollamaFile struct {
	Endpoint       string         `toml:"endpoint"`
	Model          string         `toml:"model"`
	CompletionPath string         `toml:"completion_path"`
	Timeout        *float64       `toml:"timeout"`
	MaxRetries     *int           `toml:"max_retries"`
	Options        map[string]any `toml:"options"`
	Prompt         promptFile     `toml:"prompt"`
	ItemPrompt     promptFile     `toml:"item_prompt"`
	MonsterPrompt  promptFile     `toml:"monster_prompt"`
}

type narrativeFile struct {
	Enabled         *bool  `toml:"enabled"`
	GlobalCues      string `toml:"global_cues"`
	Fallback        string `toml:"fallback"`
	ItemFallback    string `toml:"item_fallback"`
	MonsterFallback string `toml:"monster_fallback"`
}

type contentFile struct {
	Items    contentGroupFile `toml:"items"`
	Monsters contentGroupFile `toml:"monsters"`
}

type contentGroupFile struct {
	Grammars map[string]string      `toml:"grammars"`
	Symbols  map[string]symbolEntry `toml:"symbols"`
}

type grammarFile struct {
	Grammar struct {
		Axiom      string         `toml:"axiom"`
		Iterations *int           `toml:"iterations"`
		Rules      map[string]any `toml:"rules"`
	} `toml:"grammar"`
}
