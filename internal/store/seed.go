package store

// DefaultSnippets is the built-in knowledge corpus the seed command installs.
// One passage per palace, beast and kinship role, keyed by the terms the
// retrieval layer searches with.
func DefaultSnippets() []Snippet {
	return []Snippet{
		{Topic: "palace", Keywords: "大安 平安 吉利 事业", Content: "大安属木，主静，临青龙。凡谋事主一、五、七数，有久长、稳定之意，失物在坎方不远处。"},
		{Topic: "palace", Keywords: "留连 拖延 纠缠", Content: "留连属火，主阻滞，临玄武。凡谋事主二、八、十数，宜守不宜进，失物多在南方，难速得。"},
		{Topic: "palace", Keywords: "速喜 喜讯 快速", Content: "速喜属火，主吉庆快至，临朱雀。凡谋事主三、六、九数，音信在即，失物申未午方可寻。"},
		{Topic: "palace", Keywords: "赤口 口舌 是非 官司", Content: "赤口属金，主口舌争讼，临白虎。凡谋事主四、七、十数，慎言语防冲突，失物急寻西方。"},
		{Topic: "palace", Keywords: "小吉 小利 和合 财运", Content: "小吉属水，主和合有利，临六合。凡谋事主一、五、七数，所求皆顺，失物坤方有信。"},
		{Topic: "palace", Keywords: "空亡 落空 虚无", Content: "空亡属土，主虚空无果，临勾陈。凡谋事主三、六、九数，所求难成，失物渺茫难寻。"},
		{Topic: "beast", Keywords: "青龙 喜事 贵人", Content: "青龙属木，主喜庆吉祥，逢之多有贵人相助，利于谋事开展。"},
		{Topic: "beast", Keywords: "朱雀 口舌 文书", Content: "朱雀属火，主口舌文书，逢之多有消息往来，也须防是非。"},
		{Topic: "beast", Keywords: "勾陈 牵连 田土", Content: "勾陈属土，主牵连迟滞，逢之事多纠缠，与田土屋宅相关。"},
		{Topic: "beast", Keywords: "腾蛇 虚惊 怪异", Content: "腾蛇属土，主虚惊怪异，逢之心神不宁，宜静不宜动。"},
		{Topic: "beast", Keywords: "白虎 凶险 疾病", Content: "白虎属金，主凶险疾厄，逢之行事须谨慎，防意外损伤。"},
		{Topic: "beast", Keywords: "玄武 暗昧 失窃", Content: "玄武属水，主暗昧不明，逢之防小人盗失，事宜明察。"},
		{Topic: "kin", Keywords: "世爻 自己 自身", Content: "世爻代表求测人自身，世爻所临宫位吉凶直接应在问事人身上。"},
		{Topic: "kin", Keywords: "父母 长辈 文书 学业", Content: "父母爻主长辈、文书、房屋、学业，问学业考试以父母爻为用神。"},
		{Topic: "kin", Keywords: "兄弟 同辈 朋友 竞争", Content: "兄弟爻主同辈朋友，也主竞争破财，问财时兄弟旺则财有耗。"},
		{Topic: "kin", Keywords: "官鬼 事业 官司 压力 丈夫", Content: "官鬼爻主事业官职、官司压力，女问感情以官鬼为夫星。"},
		{Topic: "kin", Keywords: "妻财 钱财 财运 妻子", Content: "妻财爻主钱财产业，男问感情以妻财为妻星，问财以妻财为用神。"},
		{Topic: "kin", Keywords: "子孙 晚辈 平安 解忧", Content: "子孙爻主晚辈福泽，能解官鬼之忧，问平安喜见子孙持世。"},
	}
}
