package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "yr"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage yr configuration.

Running bare 'yr config' is the same as 'yr config show'. Every value is
checked, so a bad YR_PORT or YR_LOG_LEVEL is reported here rather than when
the server starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show and check the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configKey describes one configuration key. Value returns the key's
// effective value converted to its type, or an error if it does not parse.
type configKey struct {
	Key   string
	Doc   string
	Write bool // written uncommented by `config init`
	Value func() (any, error)
}

var configKeys = []configKey{
	{Key: "state_dir", Doc: "State/data directory", Value: typed(configPath("state_dir"))},
	{Key: "db_path", Doc: "SQLite database holding the review history", Value: typed(configPath("db_path"))},
	{Key: "history.enabled", Doc: "Record successful reviews from the CLI, HTTP API and MCP server", Write: true, Value: typed(configHistoryEnabled)},
	{Key: "port", Doc: "Port for 'yr serve'", Write: true, Value: typed(configPort)},
	{Key: "log.level", Doc: "Server log level: debug, info, warn or error", Write: true, Value: typed(configLogLevelName)},
}

func (k configKey) envVar() string {
	return "YR_" + strings.ToUpper(strings.ReplaceAll(k.Key, ".", "_"))
}

func typed[T any](f func() (T, error)) func() (any, error) {
	return func() (any, error) {
		v, err := f()
		return v, err
	}
}

func configPath(key string) func() (string, error) {
	return func() (string, error) {
		p, err := cast.ToStringE(viper.Get(key))
		if err != nil {
			return "", fmt.Errorf("invalid %s: %w", key, err)
		}
		if p == "" {
			return "", fmt.Errorf("invalid %s: must not be empty", key)
		}
		return p, nil
	}
}

func configHistoryEnabled() (bool, error) {
	enabled, err := cast.ToBoolE(viper.Get("history.enabled"))
	if err != nil {
		return false, fmt.Errorf("invalid history.enabled: %w", err)
	}
	return enabled, nil
}

// configPort returns the port `yr serve` listens on.
func configPort() (int, error) {
	raw := viper.Get("port")
	port, err := cast.ToIntE(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q: must be between 1 and 65535", cast.ToString(raw))
	}
	return port, nil
}

// configLogLevel returns the server log level.
func configLogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(cast.ToString(viper.Get("log.level")))
	if err != nil {
		return level, fmt.Errorf("invalid log.level: %w", err)
	}
	return level, nil
}

func configLogLevelName() (string, error) {
	level, err := configLogLevel()
	return level.String(), err
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// configDocument renders the current configuration as a commented YAML
// document. Paths are left commented out so they keep following state_dir.
func configDocument() (*yaml.Node, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	head := []string{
		"# yr configuration",
		"# See: yr config show (for effective values and sources)",
	}

	for _, k := range configKeys {
		v, err := k.Value()
		if err != nil {
			return nil, err
		}
		if !k.Write {
			head = append(head, fmt.Sprintf("# %s (%s): %v", k.Key, k.Doc, v))
			continue
		}

		parent := doc
		path := strings.Split(k.Key, ".")
		for _, section := range path[:len(path)-1] {
			parent = mappingChild(parent, section)
		}
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k.Key, err)
		}
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: path[len(path)-1], HeadComment: "# " + k.Doc},
			&val,
		)
	}

	return &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: strings.Join(head, "\n"),
		Content:     []*yaml.Node{doc},
	}, nil
}

// mappingChild returns the mapping stored under key in m, adding it if needed.
func mappingChild(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
	return child
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	doc, err := configDocument()
	if err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	fileValues := readConfigFileValues(cfgPath)

	var problems []error
	table := ui.Table([]string{"Key", "Value", "Source"})
	for _, k := range configKeys {
		if _, err := k.Value(); err != nil {
			problems = append(problems, err)
		}
		_ = table.Append([]string{
			k.Key,
			cast.ToString(viper.Get(k.Key)),
			detectSource(k.Key, k.envVar(), fileValues),
		})
	}
	_ = table.Render()

	if len(problems) > 0 {
		fmt.Fprintln(ui.Out)
		for _, err := range problems {
			ui.Error("%v", err)
		}
		return fmt.Errorf("%d invalid config value(s)", len(problems))
	}
	return nil
}

// readConfigFileValues returns the dot-separated keys set in the YAML file at path.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	flattenKeys("", parsed, result)
	return result
}

func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource reports where a config value comes from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("env: %s", envVar)
	}
	if fileValues[key] {
		return "file"
	}
	return "default"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'yr config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
