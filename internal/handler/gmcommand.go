package handler

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/net"
)

// HandleGMCommand processes a "." prefixed GM command.
// Returns true if the text was a GM command (consumed), false otherwise.
func HandleGMCommand(sess *net.Session, cs *combat.Session, text string, deps *Deps) bool {
	if !strings.HasPrefix(text, ".") {
		return false
	}
	parts := strings.Fields(text[1:])
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	deps.Log.Info("GM 指令",
		zap.String("account", sess.AccountName),
		zap.String("cmd", cmd),
		zap.Strings("args", args),
	)

	switch cmd {
	case "help":
		gmMsg(sess, ".learn <技能> [等級]  .forget <技能>  .skills")
		gmMsg(sess, ".prof <武器> <等級>  .skillexp <技能> <經驗>  .profexp <武器> <經驗>")
	case "learn":
		gmLearn(sess, cs, args, deps)
	case "forget":
		gmForget(sess, cs, args)
	case "skills":
		gmSkills(sess, cs)
	case "prof":
		gmProf(sess, cs, args)
	case "skillexp":
		gmSkillExp(sess, cs, args)
	case "profexp":
		gmProfExp(sess, cs, args)
	default:
		gmMsg(sess, "未知的GM指令: ."+cmd+"  輸入 .help 查看指令列表")
	}
	return true
}

// --- Helper ---

func gmMsg(sess *net.Session, msg string) {
	sendSystemMessage(sess, msg)
}

func gmMsgf(sess *net.Session, format string, a ...any) {
	gmMsg(sess, fmt.Sprintf(format, a...))
}

// gmArgs 解析 n 個必要的數字參數與選填參數。
func gmArgs(args []string, required int, usage string, sess *net.Session) ([]uint64, bool) {
	if len(args) < required {
		gmMsg(sess, "用法: "+usage)
		return nil, false
	}
	out := make([]uint64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			gmMsg(sess, "參數必須是數字: "+a)
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// --- Commands ---

func gmLearn(sess *net.Session, cs *combat.Session, args []string, deps *Deps) {
	v, ok := gmArgs(args, 1, ".learn <技能> [等級]", sess)
	if !ok {
		return
	}
	id := uint16(v[0])
	var level uint16
	if len(v) > 1 {
		level = uint16(v[1])
	}
	if deps.Skills.Get(id, level) == nil {
		gmMsgf(sess, "技能 %d 沒有等級 %d", id, level)
		return
	}
	if len(v) == 1 && cs.LearnSkill(id) {
		gmMsgf(sess, "學會技能 %d", id)
		return
	}
	cs.AddOrUpdateSkill(id, level, 0)
	gmMsgf(sess, "技能 %d 設為等級 %d", id, level)
}

func gmForget(sess *net.Session, cs *combat.Session, args []string) {
	v, ok := gmArgs(args, 1, ".forget <技能>", sess)
	if !ok {
		return
	}
	if !cs.ForgetSkill(uint16(v[0])) {
		gmMsgf(sess, "不會技能 %d", v[0])
		return
	}
	gmMsgf(sess, "遺忘技能 %d", v[0])
}

func gmSkills(sess *net.Session, cs *combat.Session) {
	skills := cs.Skills()
	if len(skills) == 0 {
		gmMsg(sess, "沒有任何技能")
		return
	}
	for _, s := range skills {
		gmMsgf(sess, "技能 %d  等級 %d  經驗 %d", s.ID, s.Level, s.Experience)
	}
	for _, p := range cs.Proficiencies() {
		gmMsgf(sess, "熟練度 %d  等級 %d  經驗 %d", p.ID, p.Level, p.Experience)
	}
}

func gmProf(sess *net.Session, cs *combat.Session, args []string) {
	v, ok := gmArgs(args, 2, ".prof <武器> <等級>", sess)
	if !ok {
		return
	}
	cs.AddOrUpdateProficiency(uint16(v[0]), uint16(v[1]), 0)
	gmMsgf(sess, "熟練度 %d 設為等級 %d", v[0], v[1])
}

func gmSkillExp(sess *net.Session, cs *combat.Session, args []string) {
	v, ok := gmArgs(args, 2, ".skillexp <技能> <經驗>", sess)
	if !ok {
		return
	}
	if !cs.KnowsSkill(uint16(v[0])) {
		gmMsgf(sess, "不會技能 %d", v[0])
		return
	}
	cs.GrantSkillExperience(uint16(v[0]), v[1])
}

func gmProfExp(sess *net.Session, cs *combat.Session, args []string) {
	v, ok := gmArgs(args, 2, ".profexp <武器> <經驗>", sess)
	if !ok {
		return
	}
	cs.GrantProficiencyExperience(uint16(v[0]), v[1])
}
