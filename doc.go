// newsbi 是面向新闻点击数据集（2019-06-13 至 2019-07-12）的只读 BI 与
// 推荐服务。
//
// 数据分两层：Postgres 存新闻元数据（static_news）与原始点击日志
// （user_clicklog），Redis 存上游管道预计算的热度榜单（日/周/总、
// 类别日榜）、用户兴趣画像与行为集合。查询链路全部只读，不回写。
//
// 包结构：
//   - core：领域类型与接口（榜单、画像、排除集合、key 约定、错误模型）
//   - store：Redis 榜单/画像/集合实现与内存测试替身
//   - newsdb：Postgres 元数据与点击日志仓储
//   - stats：统计查询的策略分类与执行规划
//   - recommend：基于兴趣画像的个性化推荐
//   - popularity：热度曲线与榜单联查
//   - feast：Feast 特征服务的画像来源（可选部署形态）
//   - api：HTTP 查询接口
package newsbi
