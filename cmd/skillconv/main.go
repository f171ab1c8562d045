// skillconv converts legacy magictype / monstertype SQL dumps to battlecore
// YAML tables.
//
// Usage:
//
//	go run ./cmd/skillconv <command> [-sqldir path] [-outdir path] [-encoding gbk|big5|utf8]
//
// Commands: skills, monsters, all
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/battlecore/internal/data"
)

// ---------------------------------------------------------------------------
// magictype 欄位位置
// ---------------------------------------------------------------------------

const (
	colMagicID = iota
	colType
	colSort
	colName
	colCrime
	colGround
	colMulti
	colTarget
	colLevel
	colUseMP
	colPower
	colIntoneSpeed
	colPercent
	colStepSecs
	colRange
	colDistance
	colStatus
	colNeedProf
	colNeedExp
	colNeedLevel
	colUseXP
	colWeaponSubtype
	colActiveTimes
	colAutoActive
	colFloorAttr
	colAutoLearn
	colLearnLevel
	colDropWeapon
	colUseEP
	colWeaponHit
	colUseItem
	colNextMagic
	colDelayMS
	colUseItemNum
	magicColumns
)

// 舊版 target 欄位代碼
var legacyTargets = map[int]string{
	0:  "player",
	1:  "self",
	2:  "self",
	4:  "weapon_passive",
	8:  "location",
	16: "buff_player",
}

// ---------------------------------------------------------------------------
// monstertype 欄位位置（只取用得到的）
// ---------------------------------------------------------------------------

const (
	colMonID          = 0
	colMonName        = 1
	colMonLookface    = 3
	colMonLife        = 4
	colMonAttackRange = 19
	colMonAttackSpeed = 22
	colMonLevel       = 24
	colMonAttackUser  = 25
	monsterColumns    = 26
)

type monsterListYAML struct {
	Monsters []monsterEntryYAML `yaml:"monsters"`
}

type monsterEntryYAML struct {
	ID          uint32 `yaml:"id"`
	Name        string `yaml:"name"`
	Lookface    uint32 `yaml:"lookface"`
	Level       uint8  `yaml:"level"`
	Life        int32  `yaml:"life"`
	AttackMode  uint8  `yaml:"attack_mode,omitempty"`
	AttackRange int32  `yaml:"attack_range,omitempty"`
	AttackSpeed int64  `yaml:"attack_speed,omitempty"`
}

// ---------------------------------------------------------------------------
// SQL parsing helpers
// ---------------------------------------------------------------------------

// parseValues extracts column values from a single INSERT INTO ... VALUES (...) line.
func parseValues(line string) []string {
	upper := strings.ToUpper(line)
	idx := strings.Index(upper, "VALUES")
	if idx == -1 {
		return nil
	}
	rest := line[idx+6:]
	start := strings.IndexByte(rest, '(')
	if start == -1 {
		return nil
	}
	end := strings.LastIndexByte(rest, ')')
	if end == -1 || end <= start {
		return nil
	}
	inner := rest[start+1 : end]

	var values []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if inQuote {
			switch {
			case ch == '\\' && i+1 < len(inner):
				cur.WriteByte(inner[i+1])
				i++
			case ch == '\'' && i+1 < len(inner) && inner[i+1] == '\'':
				cur.WriteByte('\'')
				i++
			case ch == '\'':
				inQuote = false
			default:
				cur.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case '\'':
			inQuote = true
		case ',':
			values = append(values, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	values = append(values, strings.TrimSpace(cur.String()))

	for i, v := range values {
		if strings.EqualFold(v, "null") {
			values[i] = ""
		}
	}
	return values
}

// sourceEncoding maps the -encoding flag to a decoder; nil means UTF-8.
func sourceEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "big5":
		return traditionalchinese.Big5, nil
	case "", "utf8", "utf-8":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

// parseAllInserts reads a SQL dump in enc and returns all parsed INSERT rows.
func parseAllInserts(path string, enc encoding.Encoding) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		raw, err = io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	var rows [][]string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "INSERT INTO") {
			continue
		}
		if vals := parseValues(line); vals != nil {
			rows = append(rows, vals)
		}
	}
	return rows, nil
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

func parseInt32(s string) int32   { return int32(parseInt(s)) }
func parseInt64(s string) int64   { return int64(parseInt(s)) }
func parseUint16(s string) uint16 { return uint16(parseInt(s)) }
func parseUint32(s string) uint32 { return uint32(parseInt(s)) }
func parseUint8(s string) uint8   { return uint8(parseInt(s)) }
func parseBool01(s string) bool   { return s != "" && s != "0" }

// ---------------------------------------------------------------------------
// YAML writer
// ---------------------------------------------------------------------------

func writeYAML(path string, v any, comment string) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if comment != "" {
		fmt.Fprintln(f, comment)
		fmt.Fprintln(f)
	}
	_, err = f.Write(out)
	return err
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

// skillRow maps one magictype row. ok is false for sorts the engine has no
// launcher for.
func skillRow(r []string) (data.SkillEntry, bool) {
	arch := data.Archetype(parseInt(r[colSort]))
	if _, known := data.ParseArchetype(arch.String()); !known {
		return data.SkillEntry{}, false
	}
	target, ok := legacyTargets[parseInt(r[colTarget])]
	if !ok {
		target = "none"
	}
	return data.SkillEntry{
		ID:            parseUint16(r[colType]),
		Level:         parseUint16(r[colLevel]),
		Name:          r[colName],
		Sort:          arch.String(),
		Target:        target,
		Multi:         parseBool01(r[colMulti]),
		Range:         parseInt32(r[colRange]),
		Distance:      parseInt32(r[colDistance]),
		Power:         parseInt32(r[colPower]),
		Percent:       parseInt(r[colPercent]),
		StepSecs:      parseInt32(r[colStepSecs]),
		Status:        parseUint8(r[colStatus]),
		IntoneMS:      parseInt64(r[colIntoneSpeed]),
		DelayMS:       parseInt64(r[colDelayMS]),
		NextMagic:     parseUint16(r[colNextMagic]),
		WeaponSubtype: parseUint16(r[colWeaponSubtype]),
		UseMP:         parseInt32(r[colUseMP]),
		UseStamina:    parseInt32(r[colUseEP]),
		UseItem:       parseUint16(r[colUseItem]),
		UseItemNum:    parseInt32(r[colUseItemNum]),
		UseXP:         parseBool01(r[colUseXP]),
		NeedLevel:     parseUint8(r[colNeedLevel]),
		NeedExp:       parseUint32(r[colNeedExp]),
	}, true
}

func convertSkills(sqlDir, outDir string, enc encoding.Encoding) error {
	rows, err := parseAllInserts(filepath.Join(sqlDir, "magictype.sql"), enc)
	if err != nil {
		return err
	}
	var skills []data.SkillEntry
	skipped := 0
	for _, r := range rows {
		if len(r) < magicColumns {
			skipped++
			continue
		}
		e, ok := skillRow(r)
		if !ok {
			skipped++
			continue
		}
		skills = append(skills, e)
	}
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].ID != skills[j].ID {
			return skills[i].ID < skills[j].ID
		}
		return skills[i].Level < skills[j].Level
	})
	// 輸出前先用正式載入器驗證一次
	if _, err := data.NewSkillTable(skills); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	fmt.Printf("  skills: %d entries (%d skipped)\n", len(skills), skipped)
	return writeYAML(filepath.Join(outDir, "skill_list.yaml"),
		data.SkillListFile{Skills: skills},
		"# Skill definitions - converted from magictype.sql")
}

func convertMonsters(sqlDir, outDir string, enc encoding.Encoding) error {
	rows, err := parseAllInserts(filepath.Join(sqlDir, "monstertype.sql"), enc)
	if err != nil {
		return err
	}
	var monsters []monsterEntryYAML
	for _, r := range rows {
		if len(r) < monsterColumns {
			continue
		}
		monsters = append(monsters, monsterEntryYAML{
			ID:          parseUint32(r[colMonID]),
			Name:        r[colMonName],
			Lookface:    parseUint32(r[colMonLookface]),
			Level:       parseUint8(r[colMonLevel]),
			Life:        parseInt32(r[colMonLife]),
			AttackMode:  parseUint8(r[colMonAttackUser]),
			AttackRange: parseInt32(r[colMonAttackRange]),
			AttackSpeed: parseInt64(r[colMonAttackSpeed]),
		})
	}
	sort.Slice(monsters, func(i, j int) bool { return monsters[i].ID < monsters[j].ID })
	fmt.Printf("  monsters: %d entries\n", len(monsters))
	return writeYAML(filepath.Join(outDir, "monster_list.yaml"),
		monsterListYAML{Monsters: monsters},
		"# Monster templates - converted from monstertype.sql")
}

func printUsage() {
	fmt.Println("Usage: skillconv <command> [-sqldir path] [-outdir path] [-encoding gbk|big5|utf8]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  skills    Convert magictype.sql -> skill_list.yaml")
	fmt.Println("  monsters  Convert monstertype.sql -> monster_list.yaml")
	fmt.Println("  all       Run all conversions")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	sqlDir := fs.String("sqldir", filepath.Join("..", "legacy", "sql"), "SQL source directory")
	outDir := fs.String("outdir", filepath.Join("data", "yaml"), "YAML output directory")
	encName := fs.String("encoding", "gbk", "source text encoding")
	_ = fs.Parse(os.Args[2:])

	enc, err := sourceEncoding(*encName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	converters := map[string]func(string, string, encoding.Encoding) error{
		"skills":   convertSkills,
		"monsters": convertMonsters,
	}
	allOrder := []string{"skills", "monsters"}

	if cmd == "all" {
		fmt.Println("Converting all SQL -> YAML...")
		for _, name := range allOrder {
			if err := converters[name](*sqlDir, *outDir, enc); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR [%s]: %v\n", name, err)
				os.Exit(1)
			}
		}
		fmt.Println("Done!")
		return
	}

	fn, ok := converters[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err := fn(*sqlDir, *outDir, enc); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done!")
}
