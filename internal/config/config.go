package config

// Config represents the complete javamap configuration.
// It can be loaded from javamap.yml with environment variable overrides.
type Config struct {
	Project     ProjectConfig     `yaml:"project" mapstructure:"project"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Annotations AnnotationsConfig `yaml:"annotations" mapstructure:"annotations"`
	Neo4j       Neo4jConfig       `yaml:"neo4j" mapstructure:"neo4j"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
}

// ProjectConfig identifies the analyzed project. Every node written to the
// graph carries the project name as its partition attribute.
type ProjectConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

// PathsConfig defines which files to analyze and which to skip.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // glob patterns to skip
}

// AnnotationsConfig holds the annotation name sets driving bean detection
// and injection-point recognition. Names are simple (no '@', no package).
type AnnotationsConfig struct {
	Components []string `yaml:"components" mapstructure:"components"` // class annotations declaring a bean
	Injection  []string `yaml:"injection" mapstructure:"injection"`   // member annotations marking an injection point
}

// Neo4jConfig configures the graph database connection. The password should
// come from the environment (JAVAMAP_NEO4J_PASSWORD), not from the file.
type Neo4jConfig struct {
	URI            string `yaml:"uri" mapstructure:"uri"`
	Username       string `yaml:"username" mapstructure:"username"`
	Password       string `yaml:"password" mapstructure:"password"`
	Database       string `yaml:"database" mapstructure:"database"` // empty means the server default
	MaxPoolSize    int    `yaml:"max_pool_size" mapstructure:"max_pool_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// AnalysisConfig tunes the extraction pipeline.
type AnalysisConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 0 means one per CPU
}

// ExportConfig defines where report files land.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Name: "", // usually supplied via --project
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.java",
				"**/*.xml",
			},
			Exclude: []string{
				"**/target/**",
				"**/build/**",
				"**/.git/**",
				"**/out/**",
			},
		},
		Annotations: AnnotationsConfig{
			Components: []string{
				"Component",
				"Service",
				"Repository",
				"Controller",
				"RestController",
			},
			Injection: []string{
				"Autowired",
				"Inject",
				"Resource",
			},
		},
		Neo4j: Neo4jConfig{
			URI:            "bolt://localhost:7687",
			Username:       "neo4j",
			Password:       "",
			Database:       "",
			MaxPoolSize:    50,
			TimeoutSeconds: 10,
		},
		Analysis: AnalysisConfig{
			Workers: 0,
		},
		Export: ExportConfig{
			Dir: "javamap-out",
		},
	}
}
