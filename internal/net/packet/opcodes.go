package packet

// 客戶端 → 伺服器
const (
	C_OPCODE_LOGIN      byte = 1
	C_OPCODE_ENTERWORLD byte = 2
	C_OPCODE_INTERACT   byte = 3
	C_OPCODE_PKMODE     byte = 4
	C_OPCODE_CHAT       byte = 5
	C_OPCODE_LOGOUT     byte = 6
)

// 伺服器 → 客戶端
const (
	S_OPCODE_INITPACKET      byte = 100
	S_OPCODE_LOGINRESULT     byte = 101
	S_OPCODE_ENTERWORLD      byte = 102
	S_OPCODE_SKILLINFO       byte = 110
	S_OPCODE_PROFICIENCYINFO byte = 111
	S_OPCODE_SKILLEFFECT     byte = 112
	S_OPCODE_ATTACK          byte = 113
	S_OPCODE_KILL            byte = 114
	S_OPCODE_ABORTMAGIC      byte = 115
	S_OPCODE_DROPMAGIC       byte = 116
	S_OPCODE_ROLEEFFECT      byte = 117
	S_OPCODE_ITEMUPDATE      byte = 118
	S_OPCODE_ITEMDELETE      byte = 119
	S_OPCODE_SPAWN           byte = 120
	S_OPCODE_TRANSFORM       byte = 121
	S_OPCODE_ACTION          byte = 122
	S_OPCODE_POSITION        byte = 123
	S_OPCODE_SYSMSG          byte = 124
	S_OPCODE_DISCONNECT      byte = 125
)

// 登入結果碼
const (
	LoginOK             byte = 0
	LoginBadCredentials byte = 1
	LoginAlreadyOnline  byte = 2
	LoginNoCharacter    byte = 3
	LoginServerError    byte = 9
)
