package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/derekparker/trie"
	"github.com/npillmayer/fontbridge/bridge"
	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font"
	"github.com/npillmayer/fontbridge/core/font/babelfont"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object.
type Intp struct {
	bridge  *bridge.Bridge
	repl    *readline.Instance
	glyphs  *trie.Trie             // glyph names of the cached font
	nglyphs int                    // number of names in glyphs
	options map[string]interface{} // option payload for compile requests
	lastTTF []byte                 // result of the last compilation
}

// NewIntp creates an interpreter for a bridge, reading commands from the
// terminal.
func NewIntp(b *bridge.Bridge) (*Intp, error) {
	intp := newIntp(b)
	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "fb > ",
		AutoComplete: intp.completer(),
	})
	if err != nil {
		return nil, err
	}
	intp.repl = repl
	return intp, nil
}

func newIntp(b *bridge.Bridge) *Intp {
	return &Intp{
		bridge:  b,
		glyphs:  trie.New(),
		options: make(map[string]interface{}),
	}
}

// Close releases the terminal.
func (intp *Intp) Close() {
	if intp.repl != nil {
		intp.repl.Close()
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.execute(line)
		if err != nil {
			pterm.Error.Printfln("[%s] %s", core.CodeName(core.Code(err)), core.UserMessage(err))
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

var commands = []string{
	"load", "compile", "compile-once", "interpolate", "clear", "glyphs",
	"option", "inspect", "version", "help", "quit",
}

func (intp *Intp) completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		switch cmd {
		case "interpolate", "glyphs":
			items = append(items, readline.PcItem(cmd, readline.PcItemDynamic(intp.completeGlyph)))
		case "load", "compile-once", "inspect":
			items = append(items, readline.PcItem(cmd, readline.PcItemDynamic(listFiles)))
		case "option":
			var keys []readline.PrefixCompleterInterface
			for _, k := range optionKeys {
				keys = append(keys, readline.PcItem(k))
			}
			items = append(items, readline.PcItem(cmd, keys...))
		default:
			items = append(items, readline.PcItem(cmd))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// completeGlyph proposes glyph names for the last word of line.
func (intp *Intp) completeGlyph(line string) []string {
	fields := strings.Fields(line)
	prefix := ""
	if len(fields) > 1 && !strings.HasSuffix(line, " ") {
		prefix = fields[len(fields)-1]
	}
	return intp.glyphNames(prefix)
}

func (intp *Intp) glyphNames(prefix string) []string {
	if intp.nglyphs == 0 {
		return nil
	}
	names := intp.glyphs.PrefixSearch(prefix)
	sort.Strings(names)
	return names
}

// setGlyphs replaces the glyph names offered for completion.
func (intp *Intp) setGlyphs(names []string) {
	intp.glyphs = trie.New()
	for _, name := range names {
		intp.glyphs.Add(name, nil)
	}
	intp.nglyphs = len(names)
}

func listFiles(line string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// execute interprets a command line. It returns true if the user wants
// to quit.
func (intp *Intp) execute(line string) (bool, error) {
	cmd, rest := cut(line)
	tracer().Debugf("command %q, arguments %q", cmd, rest)
	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true, nil
	case "load":
		return false, intp.load(rest)
	case "compile":
		ttf, err := intp.bridge.CompileCached(intp.options)
		return false, intp.compiled(ttf, err, rest)
	case "compile-once":
		file, out := cut(rest)
		text, err := readDescription(file)
		if err != nil {
			return false, err
		}
		ttf, err := intp.bridge.CompileOnce(text, intp.options)
		return false, intp.compiled(ttf, err, out)
	case "interpolate":
		glyph, location := cut(rest)
		if location == "" {
			location = "{}"
		}
		layer, err := intp.bridge.InterpolateGlyph(glyph, location)
		if err != nil {
			return false, err
		}
		pterm.Println(layer)
	case "clear":
		intp.bridge.Clear()
		intp.setGlyphs(nil)
		pterm.Info.Println("font cache cleared")
	case "glyphs":
		names := intp.glyphNames(rest)
		pterm.Printfln("%d glyphs: %s", len(names), strings.Join(names, " "))
	case "option":
		key, value := cut(rest)
		if err := intp.setOption(key, value); err != nil {
			return false, err
		}
		pterm.Printfln("options: %v", intp.options)
	case "inspect":
		return false, intp.inspect(rest)
	case "version":
		pterm.Println(bridge.Version())
	default:
		help(rest)
	}
	return false, nil
}

func (intp *Intp) load(path string) error {
	text, err := readDescription(path)
	if err != nil {
		return err
	}
	if err := intp.bridge.Store(text); err != nil {
		return err
	}
	names, err := bridge.WithCached(intp.bridge.Slot(), func(f *babelfont.Font) ([]string, error) {
		return f.GlyphNames(), nil
	})
	if err != nil {
		return err
	}
	intp.setGlyphs(names)
	pterm.Info.Printfln("cached font from %s with %d glyphs", path, len(names))
	return nil
}

func (intp *Intp) compiled(ttf []byte, err error, out string) error {
	if err != nil {
		return err
	}
	intp.lastTTF = ttf
	if out != "" {
		if err := os.WriteFile(out, ttf, 0644); err != nil {
			return core.WrapError(err, core.EINVALID, "cannot write %s: %v", out, err)
		}
	}
	summary, err := font.Inspect(ttf)
	if err != nil {
		return err
	}
	pterm.Printfln("compiled %s", summary)
	return nil
}

func (intp *Intp) inspect(path string) error {
	ttf := intp.lastTTF
	if path != "" {
		cf, err := font.LoadCompiledFont(path)
		if err != nil {
			return core.WrapError(err, core.EINVALID, "cannot inspect %s: %v", path, err)
		}
		ttf = cf.Binary
	}
	if ttf == nil {
		return core.Error(core.EMISSING, "nothing compiled yet")
	}
	summary, err := font.Inspect(ttf)
	if err != nil {
		return err
	}
	pterm.Println(summary.String())
	if len(summary.GlyphNames) > 0 {
		pterm.Printfln("glyphs: %s", strings.Join(summary.GlyphNames, " "))
	}
	return nil
}

var optionKeys = []string{
	bridge.KeySkipKerning, bridge.KeySkipFeatures, bridge.KeySkipMetrics,
	bridge.KeySkipOutlines, bridge.KeyDontUseProductionNames, bridge.KeySubsetGlyphs,
}

// setOption sets an option of the compile payload. Switches take a boolean,
// the subset takes a comma separated list of glyph names. An empty value
// removes the option.
func (intp *Intp) setOption(key, value string) error {
	known := false
	for _, k := range optionKeys {
		known = known || k == key
	}
	if !known {
		return core.Error(core.EINVALID, "unknown option %q", key)
	}
	if value == "" {
		delete(intp.options, key)
		return nil
	}
	if key == bridge.KeySubsetGlyphs {
		var glyphs []interface{}
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				glyphs = append(glyphs, g)
			}
		}
		intp.options[key] = glyphs
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return core.Error(core.EINVALID, "option %s needs a boolean, not %q", key, value)
	}
	intp.options[key] = b
	return nil
}

func readDescription(path string) (string, error) {
	if path == "" {
		return "", core.Error(core.EINVALID, "please name a font description file")
	}
	text, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", core.WrapError(err, core.EMISSING, "no such file: %s", path)
		}
		return "", core.WrapError(err, core.EINVALID, "cannot read %s: %v", path, err)
	}
	return string(text), nil
}

func cut(s string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	return first, strings.TrimSpace(rest)
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	switch strings.ToLower(topic) {
	case "option", "options":
		pterm.Info.Println("Options")
		pterm.Println(`
	option <key> <value>   sets a compile option, an empty value removes it
	  skip_kerning, skip_features, skip_metrics, skip_outlines,
	  dont_use_production_names     true | false
	  subset_glyphs                 comma separated glyph names
	`)
	case "interpolate":
		pterm.Info.Println("Interpolation")
		pterm.Println(`
	interpolate <glyph> <location>
	  location is a JSON object of axis tags and user-space coordinates,
	  e.g.  interpolate A {"wght": 550}
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(fmt.Sprintf(`
	load <file>                   parse a font description and cache it
	compile [out.ttf]             compile the cached font
	compile-once <file> [out.ttf] compile a font description without caching
	interpolate <glyph> <loc>     interpolate a glyph of the cached font
	glyphs [prefix]               list glyphs of the cached font
	option <key> <value>          set a compile option (help option)
	inspect [file.ttf]            summarize the last compiled font or a file
	clear                         empty the font cache
	version                       print %s
	quit                          leave
	`, bridge.Version()))
	}
}
