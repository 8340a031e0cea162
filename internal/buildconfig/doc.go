// Package buildconfig monta a configuração de inicialização do servidor Shiro.
//
// A configuração é um registro declarativo construído uma única vez, antes do
// servidor começar a atender requests, e não é alterada depois disso:
//
//   - headers de segurança aplicados em todas as rotas
//   - regras de rewrite (aliases de feed/sitemap)
//   - listas de pacotes externalizados, consumidas pelo build de assets
//   - metadados do commit (hash/URL), vindos da plataforma de hospedagem ou do git local
//
// Nada aqui é fatal: se o git local falhar, o erro é logado e os campos de commit
// ficam vazios.
package buildconfig
