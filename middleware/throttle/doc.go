// Package throttle protege as rotas que dependem do upstream (feed, sitemap,
// proxy de imagens) com token bucket por cliente e limite de concorrência.
//
// Fluxo:
//
//  1. ClientKey extrai a chave do cliente (XFF confiável ou RemoteAddr)
//  2. Buckets devolve o *rate.Limiter da chave (criado sob demanda)
//  3. Bloqueado => 429 com Retry-After; senão segue para o próximo handler
//
// Buckets inativos são removidos por um janitor (StartJanitor), parado via ctx.
package throttle
