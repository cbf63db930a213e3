package service

// QuestionPair 是一組互相呼應的題目
// 每回合其中一題給臥底、另一題給其他人，哪邊拿哪題是隨機的
type QuestionPair struct {
	Q1 string
	Q2 string
}

// defaultQuestionPool 內建題庫，回合索引超過長度時從頭循環
var defaultQuestionPool = []QuestionPair{
	{Q1: "手機裡一天 24 小時都掛著的 App？", Q2: "手機裡很少打開但覺得重要的 App？"},
	{Q1: "最想擁有的汽車品牌？", Q2: "覺得大家過譽了的汽車品牌？"},
	{Q1: "覺得非常可愛的動物？", Q2: "覺得可怕或噁心的動物？"},
	{Q1: "你心中最完美的早餐？", Q2: "你心中最完美的晚餐？"},
	{Q1: "人生第一位親眼見到的名人？沒有的話最想見誰？", Q2: "一輩子都不想遇到的名人？"},
	{Q1: "說一個你覺得人見人愛的名字？", Q2: "說一個你覺得很難相處的名字？"},
	{Q1: "收到會非常開心的禮物？", Q2: "收到會覺得莫名其妙的禮物？"},
	{Q1: "最喜歡掛在嘴邊的流行語？", Q2: "聽到會翻白眼的流行語？"},
	{Q1: "最讓你煩躁的表情符號？", Q2: "你最常用的表情符號？"},
	{Q1: "如果有一百萬，第一件想買的東西？", Q2: "就算有幾百萬也絕對不會買的東西？"},
}
