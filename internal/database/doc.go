/*
包 database 提供基于 GORM 的结果数据库连接。

# 概述

Open 根据 config.DatabaseConfig 选择方言（postgres、mysql 或纯 Go 的
glebarez/sqlite），配置连接池并在返回前 Ping 一次。评估结果表的迁移与
写入由 evaluation.DBSink 负责，本包只管理连接。

SQLite 强制单连接：文件库避免写锁竞争，file::memory: 内存库保证所有
语句落在同一个数据库上。
*/
package database
