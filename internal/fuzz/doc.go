// Package fuzztests houses Go fuzz harnesses for the SafeC front end and the
// monomorphizer (source -> lexer -> parser -> mono). They guard against
// panics and hangs on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер, парсер
// и полный конвейер компиляции.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
