// Package view renderiza as páginas do Shiro no servidor: o Container de página
// e o BackgroundGlow, que é só CSS (keyframes infinitos, sem script).
package view
