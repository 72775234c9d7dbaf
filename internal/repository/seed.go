package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yuqie6/CodeForge/internal/schema"
)

// defaultSkills 内置技能清单，首次初始化时写入
var defaultSkills = []schema.Skill{
	// AI/ML
	{Name: "Machine Learning", Category: schema.CategoryAIML, Description: "通用机器学习算法与技术", RelatedTechnologies: schema.JSONArray{"python", "scikit-learn", "numpy", "pandas", "matplotlib"}},
	{Name: "Deep Learning", Category: schema.CategoryAIML, Description: "神经网络与深度学习框架", RelatedTechnologies: schema.JSONArray{"python", "pytorch", "tensorflow", "keras", "transformers"}},
	{Name: "Natural Language Processing", Category: schema.CategoryAIML, Description: "文本处理与 NLP 模型", RelatedTechnologies: schema.JSONArray{"python", "nltk", "spacy", "transformers", "huggingface"}},
	{Name: "Computer Vision", Category: schema.CategoryAIML, Description: "图像与视频的机器学习处理", RelatedTechnologies: schema.JSONArray{"python", "opencv", "pytorch", "tensorflow", "pillow"}},
	{Name: "MLOps", Category: schema.CategoryAIML, Description: "机器学习运维与部署", RelatedTechnologies: schema.JSONArray{"mlflow", "kubeflow", "docker", "kubernetes", "fastapi"}},

	// Full-Stack
	{Name: "Backend Development", Category: schema.CategoryFullStack, Description: "服务端应用开发", RelatedTechnologies: schema.JSONArray{"python", "fastapi", "django", "flask", "nodejs", "express"}},
	{Name: "Frontend Development", Category: schema.CategoryFullStack, Description: "客户端 UI/UX 开发", RelatedTechnologies: schema.JSONArray{"javascript", "typescript", "react", "nextjs", "vue", "html", "css"}},
	{Name: "REST APIs", Category: schema.CategoryFullStack, Description: "RESTful API 设计与实现", RelatedTechnologies: schema.JSONArray{"fastapi", "express", "django-rest", "swagger", "postman"}},
	{Name: "Database Design", Category: schema.CategoryFullStack, Description: "SQL 与 NoSQL 数据库建模", RelatedTechnologies: schema.JSONArray{"postgresql", "mongodb", "redis", "sqlite", "sqlalchemy"}},
	{Name: "Web Frameworks", Category: schema.CategoryFullStack, Description: "Django、FastAPI、Express、React 等", RelatedTechnologies: schema.JSONArray{"fastapi", "django", "express", "react", "nextjs"}},

	// System Design
	{Name: "Distributed Systems", Category: schema.CategorySystemDesign, Description: "可扩展分布式架构设计", RelatedTechnologies: schema.JSONArray{"docker", "kubernetes", "microservices", "grpc", "rabbitmq"}},
	{Name: "Caching Strategies", Category: schema.CategorySystemDesign, Description: "Redis、Memcached、CDN 缓存", RelatedTechnologies: schema.JSONArray{"redis", "memcached", "cdn", "nginx"}},
	{Name: "Message Queues", Category: schema.CategorySystemDesign, Description: "RabbitMQ、Kafka、异步处理", RelatedTechnologies: schema.JSONArray{"rabbitmq", "kafka", "celery", "redis"}},
	{Name: "Microservices", Category: schema.CategorySystemDesign, Description: "微服务架构模式", RelatedTechnologies: schema.JSONArray{"docker", "kubernetes", "grpc", "consul", "istio"}},
	{Name: "Load Balancing", Category: schema.CategorySystemDesign, Description: "流量分发与扩容", RelatedTechnologies: schema.JSONArray{"nginx", "haproxy", "aws-elb", "kubernetes"}},

	// Security/Blockchain
	{Name: "Authentication", Category: schema.CategorySecurityBlockchain, Description: "JWT、OAuth、会话管理", RelatedTechnologies: schema.JSONArray{"jwt", "oauth", "passport", "auth0", "session management"}},
	{Name: "Encryption", Category: schema.CategorySecurityBlockchain, Description: "加密算法与实现", RelatedTechnologies: schema.JSONArray{"cryptography", "hashlib", "bcrypt", "aes", "rsa"}},
	{Name: "Web Security", Category: schema.CategorySecurityBlockchain, Description: "XSS、CSRF、SQL 注入防护", RelatedTechnologies: schema.JSONArray{"owasp", "xss-prevention", "csrf", "sql-injection-prevention"}},
	{Name: "Smart Contracts", Category: schema.CategorySecurityBlockchain, Description: "Ethereum、Solidity、区块链开发", RelatedTechnologies: schema.JSONArray{"solidity", "ethereum", "web3", "truffle", "hardhat"}},
	{Name: "Security Auditing", Category: schema.CategorySecurityBlockchain, Description: "漏洞评估与渗透测试", RelatedTechnologies: schema.JSONArray{"penetration-testing", "vulnerability-scanning", "security-analysis"}},
}

// defaultAchievements 内置成就清单
var defaultAchievements = []schema.Achievement{
	{Name: "Hello World", Description: "创建第一个项目", Icon: "🌱", CriteriaType: schema.CriteriaProjectCount, CriteriaValue: 1},
	{Name: "Code Warrior", Description: "创建 5 个项目", Icon: "⚔️", CriteriaType: schema.CriteriaProjectCount, CriteriaValue: 5},
	{Name: "Project Master", Description: "创建 10 个项目", Icon: "👑", CriteriaType: schema.CriteriaProjectCount, CriteriaValue: 10},

	{Name: "Consistency is Key", Description: "连续 3 天保持活跃", Icon: "🔥", CriteriaType: schema.CriteriaStreak, CriteriaValue: 3},
	{Name: "Unstoppable", Description: "连续 7 天保持活跃", Icon: "⚡", CriteriaType: schema.CriteriaStreak, CriteriaValue: 7},

	{Name: "Novice Coder", Description: "平均技能熟练度达到 20%", Icon: "📘", CriteriaType: schema.CriteriaSkillLevel, CriteriaValue: 20},
	{Name: "Expert Engineer", Description: "平均技能熟练度达到 80%", Icon: "🚀", CriteriaType: schema.CriteriaSkillLevel, CriteriaValue: 80},
}

// SeedDefaults 写入内置技能与成就，幂等：已存在的记录保持不变
func SeedDefaults(ctx context.Context, d *Database) error {
	skillRepo := NewSkillRepository(d.DB)
	achievementRepo := NewAchievementRepository(d.DB)

	seededSkills := 0
	for i := range defaultSkills {
		s := defaultSkills[i]
		existing, err := skillRepo.GetByName(ctx, s.Name)
		if err != nil {
			return fmt.Errorf("初始化技能失败: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := d.DB.WithContext(ctx).Create(&s).Error; err != nil {
			return fmt.Errorf("写入技能 %s 失败: %w", s.Name, err)
		}
		seededSkills++
	}

	seededAchievements := 0
	for i := range defaultAchievements {
		a := defaultAchievements[i]
		existing, err := achievementRepo.GetByName(ctx, a.Name)
		if err != nil {
			return fmt.Errorf("初始化成就失败: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := d.DB.WithContext(ctx).Create(&a).Error; err != nil {
			return fmt.Errorf("写入成就 %s 失败: %w", a.Name, err)
		}
		seededAchievements++
	}

	slog.Info("默认数据初始化完成", "skills", seededSkills, "achievements", seededAchievements)
	return nil
}
