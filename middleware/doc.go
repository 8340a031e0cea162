// Package middleware agrupa os middlewares net/http do servidor Shiro.
//
// Ordem no servidor (de fora para dentro):
//
//  1. rewrite: aliases /atom.xml, /feed.xml, /sitemap.xml antes do roteamento
//  2. requestid: garante X-Request-ID
//  3. accesslog: log estruturado (zap) de cada request
//  4. headers: headers de segurança em todas as rotas
//  5. throttle: só nas rotas que batem no upstream (feed, sitemap, imagens)
package middleware
